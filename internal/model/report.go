package model

import (
	"time"

	"github.com/google/uuid"
)

// ValidationReport aggregates everything wrong or suspicious about a
// submitted result set. Errors block submission, warnings do not.
type ValidationReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the result set passed validation.
func (r *ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

// AnalysisReport is the full evaluation of one record or ad-hoc result
// set. Record and Trends are absent for stateless evaluations.
type AnalysisReport struct {
	Record          *AnalysisRecord           `json:"record,omitempty"`
	Classifications map[string]Classification `json:"classifications"`
	Patterns        []PatternMatch            `json:"patterns"`
	Validation      *ValidationReport         `json:"validation,omitempty"`
	Trends          map[string]TrendEntry     `json:"trends,omitempty"`
	Insights        []string                  `json:"insights,omitempty"`
}

// HasCritical reports whether any classification or matched pattern
// reached the critical tier.
func (r *AnalysisReport) HasCritical() bool {
	for _, c := range r.Classifications {
		if c.Tier == TierCritical {
			return true
		}
	}
	for _, p := range r.Patterns {
		if p.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// ParameterStats counts classification outcomes for one parameter.
type ParameterStats struct {
	Count    int `json:"count"`
	Low      int `json:"low"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// LabStats summarizes the stored record set.
type LabStats struct {
	TotalRecords    int                        `json:"total_records"`
	UrgentRecords   int                        `json:"urgent_records"`
	AbnormalRecords int                        `json:"abnormal_records"`
	CriticalRecords int                        `json:"critical_records"`
	Parameters      map[string]*ParameterStats `json:"parameters"`
}

// CriticalAlert is the payload sent to notification channels when a
// record contains life-threatening values.
type CriticalAlert struct {
	RecordID    uuid.UUID `json:"record_id"`
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Parameters  []string  `json:"parameters"`
	Patterns    []string  `json:"patterns"`
	CreatedAt   time.Time `json:"created_at"`
}
