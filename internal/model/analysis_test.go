package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func rec(patientID string, priority Priority, ts time.Time) *AnalysisRecord {
	return &AnalysisRecord{
		ID:                 uuid.New(),
		PatientID:          patientID,
		PatientName:        "n",
		Priority:           priority,
		SelectedParameters: []string{"glucose"},
		Data:               ResultSet{"glucose": f(5)},
		Timestamp:          ts,
	}
}

func TestSortWorklist(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	r1 := rec("p1", PriorityRoutine, day.Add(10*time.Hour))
	r2 := rec("p2", PriorityUrgent, day.Add(9*time.Hour))
	r3 := rec("p3", PriorityUrgent, day.Add(9*time.Hour+30*time.Minute))

	records := []*AnalysisRecord{r1, r2, r3}
	SortWorklist(records)

	require.Len(t, records, 3)
	assert.Equal(t, r3.ID, records[0].ID, "urgent records first, newest leading")
	assert.Equal(t, r2.ID, records[1].ID)
	assert.Equal(t, r1.ID, records[2].ID, "routine records last despite later timestamp")
}

func TestSortWorklistStable(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	a := rec("p1", PriorityUrgent, ts)
	b := rec("p2", PriorityUrgent, ts)
	c := rec("p3", PriorityUrgent, ts)

	records := []*AnalysisRecord{a, b, c}
	SortWorklist(records)

	assert.Equal(t, a.ID, records[0].ID)
	assert.Equal(t, b.ID, records[1].ID)
	assert.Equal(t, c.ID, records[2].ID)
}

func TestWorklistLess(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	urgent := rec("p1", PriorityUrgent, ts)
	routine := rec("p2", PriorityRoutine, ts.Add(time.Hour))

	assert.True(t, WorklistLess(urgent, routine))
	assert.False(t, WorklistLess(routine, urgent))

	newer := rec("p3", PriorityUrgent, ts.Add(time.Minute))
	assert.True(t, WorklistLess(newer, urgent))
}

func TestAnalysisRecordValidate(t *testing.T) {
	ts := time.Now()

	valid := rec("p1", PriorityRoutine, ts)
	assert.NoError(t, valid.Validate())

	missingPatient := rec("", PriorityRoutine, ts)
	assert.Error(t, missingPatient.Validate())

	badPriority := rec("p1", "soon", ts)
	assert.Error(t, badPriority.Validate())

	badGender := rec("p1", PriorityRoutine, ts)
	badGender.PatientGender = "other"
	assert.Error(t, badGender.Validate())

	noTimestamp := rec("p1", PriorityRoutine, time.Time{})
	assert.Error(t, noTimestamp.Validate())

	genderless := rec("p1", PriorityRoutine, ts)
	genderless.PatientGender = ""
	assert.NoError(t, genderless.Validate(), "absent gender is allowed")
}

func TestResultSetValue(t *testing.T) {
	rs := ResultSet{
		"glucose": f(5.5),
		"wbc":     nil,
	}

	v, ok := rs.Value("glucose")
	assert.True(t, ok)
	assert.Equal(t, 5.5, v)

	_, ok = rs.Value("wbc")
	assert.False(t, ok, "null measurement reads as absent")

	_, ok = rs.Value("esr")
	assert.False(t, ok)
}

func TestCloneIndependence(t *testing.T) {
	original := rec("p1", PriorityRoutine, time.Now())
	clone := original.Clone()

	*clone.Data["glucose"] = 99
	clone.SelectedParameters[0] = "wbc"
	clone.PatientName = "changed"

	v, _ := original.Data.Value("glucose")
	assert.Equal(t, 5.0, v)
	assert.Equal(t, "glucose", original.SelectedParameters[0])
	assert.Equal(t, "n", original.PatientName)
}
