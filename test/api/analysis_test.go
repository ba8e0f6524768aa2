package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportPayload struct {
	Record struct {
		ID        string `json:"id"`
		PatientID string `json:"patient_id"`
		Priority  string `json:"priority"`
	} `json:"record"`
	Classifications map[string]struct {
		Value float64 `json:"value"`
		Tier  string  `json:"tier"`
	} `json:"classifications"`
	Patterns []struct {
		Name     string `json:"name"`
		Severity string `json:"severity"`
	} `json:"patterns"`
	Validation *struct {
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	} `json:"validation"`
	Trends map[string]struct {
		Percent   float64 `json:"percent"`
		Direction string  `json:"direction"`
	} `json:"trends"`
	Insights []string `json:"insights"`
}

func submitAnalysis(t *testing.T, body map[string]interface{}) reportPayload {
	t.Helper()
	status, resp := makeRequest(t, http.MethodPost, "/analyses", body)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, resp.IsSuccess(), "submit failed: %s", resp.Message)

	var report reportPayload
	decodeData(t, resp, &report)
	require.NotEmpty(t, report.Record.ID)
	return report
}

func TestSubmitAndFetchReport(t *testing.T) {
	patientID := uniqueID("P")
	report := submitAnalysis(t, map[string]interface{}{
		"patient_id":          patientID,
		"patient_name":        "Flow Test",
		"patient_gender":      "male",
		"patient_age":         40,
		"priority":            "routine",
		"selected_parameters": []string{"hemoglobin", "glucose"},
		"data": map[string]float64{
			"hemoglobin": 150,
			"glucose":    5.0,
		},
	})

	assert.Equal(t, "normal", report.Classifications["hemoglobin"].Tier)
	assert.Equal(t, "normal", report.Classifications["glucose"].Tier)
	assert.Empty(t, report.Patterns)

	status, resp := makeRequest(t, http.MethodGet, "/analyses/"+report.Record.ID+"/report", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.IsSuccess())

	var fetched reportPayload
	decodeData(t, resp, &fetched)
	assert.Equal(t, report.Record.ID, fetched.Record.ID)
	assert.Equal(t, patientID, fetched.Record.PatientID)
}

func TestSubmitCriticalValue(t *testing.T) {
	report := submitAnalysis(t, map[string]interface{}{
		"patient_id":          uniqueID("P"),
		"patient_name":        "Critical Case",
		"patient_gender":      "male",
		"patient_age":         62,
		"priority":            "urgent",
		"selected_parameters": []string{"hemoglobin"},
		"data": map[string]float64{
			"hemoglobin": 45,
		},
	})

	assert.Equal(t, "critical", report.Classifications["hemoglobin"].Tier)
	require.NotEmpty(t, report.Insights)
	assert.Contains(t, report.Insights[0], "CRITICAL")
}

func TestSubmitRejectsMissingParameters(t *testing.T) {
	status, resp := makeRequest(t, http.MethodPost, "/analyses", map[string]interface{}{
		"patient_id":          uniqueID("P"),
		"patient_name":        "Incomplete Case",
		"priority":            "routine",
		"selected_parameters": []string{"hemoglobin", "glucose"},
		"data": map[string]float64{
			"glucose": 5.0,
		},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.False(t, resp.IsSuccess())
}

func TestPatientHistoryAndTrends(t *testing.T) {
	patientID := uniqueID("P")

	submitAnalysis(t, map[string]interface{}{
		"patient_id":          patientID,
		"patient_name":        "Trend Case",
		"patient_gender":      "female",
		"patient_age":         35,
		"priority":            "routine",
		"selected_parameters": []string{"glucose"},
		"data":                map[string]float64{"glucose": 4.0},
		"timestamp":           "2026-08-20T08:00:00Z",
	})
	submitAnalysis(t, map[string]interface{}{
		"patient_id":          patientID,
		"patient_name":        "Trend Case",
		"patient_gender":      "female",
		"patient_age":         35,
		"priority":            "routine",
		"selected_parameters": []string{"glucose"},
		"data":                map[string]float64{"glucose": 5.0},
		"timestamp":           "2026-08-21T08:00:00Z",
	})

	status, resp := makeRequest(t, http.MethodGet, "/patients/"+patientID+"/analyses", nil)
	require.Equal(t, http.StatusOK, status)
	var records []struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &records)
	assert.Len(t, records, 2)

	status, resp = makeRequest(t, http.MethodGet, "/patients/"+patientID+"/analyses/trends", nil)
	require.Equal(t, http.StatusOK, status)
	var trends map[string]struct {
		Previous  float64 `json:"previous"`
		Current   float64 `json:"current"`
		Percent   float64 `json:"percent"`
		Direction string  `json:"direction"`
	}
	decodeData(t, resp, &trends)
	require.Contains(t, trends, "glucose")
	assert.InDelta(t, 25.0, trends["glucose"].Percent, 0.01)
	assert.Equal(t, "up", trends["glucose"].Direction)

	status, resp = makeRequest(t, http.MethodGet, "/patients/"+patientID+"/analyses/latest", nil)
	require.Equal(t, http.StatusOK, status)
	var latest struct {
		Data map[string]float64 `json:"data"`
	}
	decodeData(t, resp, &latest)
	assert.Equal(t, 5.0, latest.Data["glucose"])
}

func TestUnknownPatientReturns404(t *testing.T) {
	status, resp := makeRequest(t, http.MethodGet, "/patients/"+uniqueID("ghost")+"/analyses/latest", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, resp.IsSuccess())
}

func TestEvaluateDoesNotStore(t *testing.T) {
	status, resp := makeRequest(t, http.MethodPost, "/analyses/evaluate", map[string]interface{}{
		"gender": "male",
		"data": map[string]float64{
			"wbc": 15.0,
			"esr": 30.0,
		},
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.IsSuccess())

	var report reportPayload
	decodeData(t, resp, &report)
	assert.Empty(t, report.Record.ID)
	assert.Equal(t, "abnormal_high", report.Classifications["wbc"].Tier)
	require.NotEmpty(t, report.Patterns)
	assert.Equal(t, "Inflammation", report.Patterns[0].Name)
}

func TestWorklistOrdersUrgentFirst(t *testing.T) {
	routineID := uniqueID("P")
	urgentID := uniqueID("P")

	submitAnalysis(t, map[string]interface{}{
		"patient_id":          routineID,
		"patient_name":        "Routine Case",
		"priority":            "routine",
		"selected_parameters": []string{"glucose"},
		"data":                map[string]float64{"glucose": 5.0},
	})
	submitAnalysis(t, map[string]interface{}{
		"patient_id":          urgentID,
		"patient_name":        "Urgent Case",
		"priority":            "urgent",
		"selected_parameters": []string{"glucose"},
		"data":                map[string]float64{"glucose": 5.5},
	})

	status, resp := makeRequest(t, http.MethodGet, "/analyses/worklist", nil)
	require.Equal(t, http.StatusOK, status)

	var records []struct {
		PatientID string `json:"patient_id"`
		Priority  string `json:"priority"`
	}
	decodeData(t, resp, &records)
	require.NotEmpty(t, records)

	seenRoutine := false
	for _, r := range records {
		if r.Priority == "routine" {
			seenRoutine = true
		}
		if r.Priority == "urgent" {
			assert.False(t, seenRoutine, "urgent record listed after a routine one")
		}
	}
}

func TestStatsCountSubmissions(t *testing.T) {
	submitAnalysis(t, map[string]interface{}{
		"patient_id":          uniqueID("P"),
		"patient_name":        "Stats Case",
		"priority":            "urgent",
		"selected_parameters": []string{"glucose"},
		"data":                map[string]float64{"glucose": 12.0},
	})

	status, resp := makeRequest(t, http.MethodGet, "/analyses/stats", nil)
	require.Equal(t, http.StatusOK, status)

	var stats struct {
		TotalRecords    int `json:"total_records"`
		UrgentRecords   int `json:"urgent_records"`
		AbnormalRecords int `json:"abnormal_records"`
		Parameters      map[string]struct {
			Count int `json:"count"`
			High  int `json:"high"`
		} `json:"parameters"`
	}
	decodeData(t, resp, &stats)
	assert.Greater(t, stats.TotalRecords, 0)
	assert.Greater(t, stats.UrgentRecords, 0)
	assert.Greater(t, stats.AbnormalRecords, 0)
	require.Contains(t, stats.Parameters, "glucose")
	assert.Greater(t, stats.Parameters["glucose"].High, 0)
}

func TestSimulateReturnsRequestedParameters(t *testing.T) {
	status, resp := makeRequest(t, http.MethodPost, "/analyses/simulate", map[string]interface{}{
		"parameters": []string{"hemoglobin", "glucose"},
		"gender":     "female",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.IsSuccess())

	var values map[string]float64
	decodeData(t, resp, &values)
	assert.Len(t, values, 2)
	assert.Contains(t, values, "hemoglobin")
	assert.Contains(t, values, "glucose")
}
