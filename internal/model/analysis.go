package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Priority orders records in the review worklist.
type Priority string

const (
	PriorityRoutine Priority = "routine"
	PriorityUrgent  Priority = "urgent"
)

// Valid reports whether p is a known priority value.
func (p Priority) Valid() bool {
	return p == PriorityRoutine || p == PriorityUrgent
}

// ResultSet maps parameter codes to measured values. A nil value
// records that the parameter was requested but not measured.
type ResultSet map[string]*float64

// Value returns the measured value for code. The second return is
// false when the code is absent or the value is null.
func (rs ResultSet) Value(code string) (float64, bool) {
	v, ok := rs[code]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Clone returns a deep copy of the result set.
func (rs ResultSet) Clone() ResultSet {
	if rs == nil {
		return nil
	}
	out := make(ResultSet, len(rs))
	for k, v := range rs {
		if v == nil {
			out[k] = nil
			continue
		}
		val := *v
		out[k] = &val
	}
	return out
}

// AnalysisRecord is one submitted test order with its measured values.
type AnalysisRecord struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	PatientID          string    `db:"patient_id" json:"patient_id"`
	PatientName        string    `db:"patient_name" json:"patient_name"`
	PatientGender      Gender    `db:"patient_gender" json:"patient_gender"`
	PatientAge         int       `db:"patient_age" json:"patient_age"`
	Priority           Priority  `db:"priority" json:"priority"`
	SelectedParameters []string  `json:"selected_parameters"`
	Data               ResultSet `json:"data"`
	Timestamp          time.Time `db:"timestamp" json:"timestamp"`
}

// Validate checks the structural invariants a stored record must hold.
func (r *AnalysisRecord) Validate() error {
	if r.PatientID == "" {
		return fmt.Errorf("missing patient_id")
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", r.Priority)
	}
	if r.PatientGender != "" && !r.PatientGender.Valid() {
		return fmt.Errorf("invalid patient_gender %q", r.PatientGender)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("missing timestamp")
	}
	return nil
}

// Clone returns a deep copy so callers can hand records out without
// exposing shared state.
func (r *AnalysisRecord) Clone() *AnalysisRecord {
	out := *r
	if r.SelectedParameters != nil {
		out.SelectedParameters = append([]string(nil), r.SelectedParameters...)
	}
	out.Data = r.Data.Clone()
	return &out
}

// WorklistLess orders a before b when a reviews first: urgent records
// ahead of routine ones, newer timestamps ahead of older within the
// same priority.
func WorklistLess(a, b *AnalysisRecord) bool {
	if a.Priority != b.Priority {
		return a.Priority == PriorityUrgent
	}
	return a.Timestamp.After(b.Timestamp)
}

// SortWorklist sorts records into review order. The sort is stable so
// records that compare equal keep their submission order.
func SortWorklist(records []*AnalysisRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return WorklistLess(records[i], records[j])
	})
}

// CreateAnalysisRequest is the submission payload for a new record.
type CreateAnalysisRequest struct {
	PatientID          string     `json:"patient_id" binding:"required"`
	PatientName        string     `json:"patient_name" binding:"required"`
	PatientGender      Gender     `json:"patient_gender" binding:"omitempty,oneof=male female"`
	PatientAge         int        `json:"patient_age" binding:"omitempty,min=0"`
	Priority           Priority   `json:"priority" binding:"required,oneof=routine urgent"`
	SelectedParameters []string   `json:"selected_parameters" binding:"required,min=1,dive,paramcode"`
	Data               ResultSet  `json:"data" binding:"required"`
	Timestamp          *time.Time `json:"timestamp"`
}

// EvaluateRequest classifies a result set without storing anything.
type EvaluateRequest struct {
	Gender   Gender    `json:"gender" binding:"omitempty,oneof=male female"`
	Data     ResultSet `json:"data" binding:"required"`
	Required []string  `json:"required"`
}

// SimulateRequest generates plausible values for the named parameters,
// or for the whole catalog when none are given.
type SimulateRequest struct {
	Parameters []string `json:"parameters" binding:"omitempty,dive,paramcode"`
	Gender     Gender   `json:"gender" binding:"omitempty,oneof=male female"`
}
