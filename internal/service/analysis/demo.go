package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labwise/lab-api/internal/model"
)

func f(v float64) *float64 { return &v }

// demoRecords returns three representative records: one urgent with
// mild elevations, one routine anemic female, one urgent liver case.
func demoRecords(now time.Time) []*model.AnalysisRecord {
	return []*model.AnalysisRecord{
		{
			ID:                 uuid.New(),
			PatientID:          "P-001",
			PatientName:        "Ivan Ivanov",
			PatientGender:      model.GenderMale,
			PatientAge:         45,
			Priority:           model.PriorityUrgent,
			SelectedParameters: []string{"hemoglobin", "wbc", "platelets", "glucose", "creatinine"},
			Data: model.ResultSet{
				"hemoglobin": f(145),
				"wbc":        f(12.5),
				"platelets":  f(180),
				"glucose":    f(6.2),
				"creatinine": f(95),
			},
			Timestamp: now.Add(-5 * time.Minute),
		},
		{
			ID:                 uuid.New(),
			PatientID:          "P-002",
			PatientName:        "Maria Petrova",
			PatientGender:      model.GenderFemale,
			PatientAge:         32,
			Priority:           model.PriorityRoutine,
			SelectedParameters: []string{"hemoglobin", "rbc", "wbc", "esr"},
			Data: model.ResultSet{
				"hemoglobin": f(115),
				"rbc":        f(3.5),
				"wbc":        f(5.2),
				"esr":        f(18),
			},
			Timestamp: now.Add(-2 * time.Hour),
		},
		{
			ID:                 uuid.New(),
			PatientID:          "P-003",
			PatientName:        "Peter Sidorov",
			PatientGender:      model.GenderMale,
			PatientAge:         58,
			Priority:           model.PriorityUrgent,
			SelectedParameters: []string{"hemoglobin", "wbc", "platelets", "alt", "ast", "total_bilirubin"},
			Data: model.ResultSet{
				"hemoglobin":      f(140),
				"wbc":             f(8.5),
				"platelets":       f(250),
				"alt":             f(65),
				"ast":             f(55),
				"total_bilirubin": f(28),
			},
			Timestamp: now.Add(-15 * time.Minute),
		},
	}
}

// SeedDemo loads the demo dataset straight into the store. No events
// or alerts fire; this is fixture loading, not live submission.
func (s *Service) SeedDemo(ctx context.Context) ([]*model.AnalysisRecord, error) {
	records := demoRecords(time.Now().UTC())
	for _, record := range records {
		if err := s.repo.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	s.logger.Info("demo dataset seeded", "records", len(records))
	return records, nil
}
