package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/labwise/lab-api/internal/catalog"
	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/internal/repository"
	"github.com/labwise/lab-api/internal/service/alert"
	"github.com/labwise/lab-api/internal/service/classification"
	"github.com/labwise/lab-api/internal/service/pattern"
	"github.com/labwise/lab-api/internal/service/quality"
	"github.com/labwise/lab-api/internal/service/simulator"
	"github.com/labwise/lab-api/internal/service/trend"
	"github.com/labwise/lab-api/pkg/errors"
	"github.com/labwise/lab-api/pkg/event"
	"github.com/labwise/lab-api/pkg/logger"
	"github.com/labwise/lab-api/pkg/metrics"
)

const (
	reportCacheTTL     = 5 * time.Minute
	reportCacheCleanup = 10 * time.Minute

	// Trend changes below this magnitude are noise, not insights.
	significantTrendPercent = 10.0
)

// EventEmitter records integration events for asynchronous delivery.
type EventEmitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// Service orchestrates the evaluation pipeline: validate, classify,
// detect patterns, compute trends, persist, and fan out critical
// alerts.
type Service struct {
	catalog    *catalog.Catalog
	classifier *classification.Service
	patterns   *pattern.Service
	validator  *quality.Service
	trends     *trend.Service
	simulator  *simulator.Service
	repo       repository.AnalysisRepository
	events     EventEmitter
	alerts     alert.Notifier
	reports    *cache.Cache
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewService(
	cat *catalog.Catalog,
	rules []model.PatternRule,
	repo repository.AnalysisRepository,
	events EventEmitter,
	alerts alert.Notifier,
	log *logger.Logger,
	m *metrics.Metrics,
) (*Service, error) {
	if rules != nil {
		if err := pattern.ValidateRules(rules); err != nil {
			return nil, fmt.Errorf("failed to load pattern rules: %w", err)
		}
	}

	classifier := classification.NewService(cat)
	return &Service{
		catalog:    cat,
		classifier: classifier,
		patterns:   pattern.NewService(classifier, rules),
		validator:  quality.NewService(cat),
		trends:     trend.NewService(),
		simulator:  simulator.NewService(cat),
		repo:       repo,
		events:     events,
		alerts:     alerts,
		reports:    cache.New(reportCacheTTL, reportCacheCleanup),
		logger:     log,
		metrics:    m,
	}, nil
}

// SubmitAnalysis validates, evaluates and persists a new record.
// Validation errors block the save; warnings ride along on the report.
func (s *Service) SubmitAnalysis(ctx context.Context, req *model.CreateAnalysisRequest) (*model.AnalysisReport, error) {
	vr, err := s.validator.Validate(req.Data, req.SelectedParameters)
	if err != nil {
		return nil, err
	}
	if !vr.OK() {
		s.metrics.ValidationFailures.Inc()
		return nil, errors.NewValidation("submitted results failed validation", vr)
	}

	record := &model.AnalysisRecord{
		ID:                 uuid.New(),
		PatientID:          req.PatientID,
		PatientName:        req.PatientName,
		PatientGender:      req.PatientGender,
		PatientAge:         req.PatientAge,
		Priority:           req.Priority,
		SelectedParameters: req.SelectedParameters,
		Data:               req.Data,
		Timestamp:          time.Now().UTC(),
	}
	if req.Timestamp != nil {
		record.Timestamp = *req.Timestamp
	}

	// The previous record must be resolved before the save so the
	// new record does not become its own baseline.
	previous, err := s.repo.LatestFor(ctx, record.PatientID)
	if err != nil {
		return nil, err
	}

	report, err := s.evaluate(record.Data, record.PatientGender)
	if err != nil {
		return nil, err
	}
	report.Record = record
	report.Validation = vr
	if previous != nil {
		report.Trends = s.trends.Trend(record.Data, previous.Data, record.SelectedParameters)
	}
	report.Insights = s.buildInsights(record.SelectedParameters, report)

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.metrics.AnalysesSaved.Inc()
	for _, p := range report.Patterns {
		s.metrics.PatternsDetected.WithLabelValues(p.Name).Inc()
	}
	for _, c := range report.Classifications {
		if c.Tier == model.TierCritical {
			s.metrics.CriticalValues.Inc()
		}
	}

	if report.HasCritical() {
		s.raiseCritical(ctx, record, report)
	}

	s.reports.Set(record.ID.String(), report, cache.DefaultExpiration)
	s.logger.Info("analysis saved",
		"record_id", record.ID.String(),
		"patient_id", record.PatientID,
		"priority", string(record.Priority),
		"critical", report.HasCritical(),
	)
	return report, nil
}

// Evaluate runs the pipeline over an ad-hoc result set without
// persisting anything. Validation problems are reported, not fatal.
func (s *Service) Evaluate(ctx context.Context, req *model.EvaluateRequest) (*model.AnalysisReport, error) {
	vr, err := s.validator.Validate(req.Data, req.Required)
	if err != nil {
		return nil, err
	}

	report, err := s.evaluate(req.Data, req.Gender)
	if err != nil {
		return nil, err
	}
	report.Validation = vr
	report.Insights = s.buildInsights(sortedCodes(req.Data), report)
	return report, nil
}

// evaluate classifies the set and detects patterns.
func (s *Service) evaluate(rs model.ResultSet, gender model.Gender) (*model.AnalysisReport, error) {
	start := time.Now()
	defer func() {
		s.metrics.EvaluationLatency.Observe(time.Since(start).Seconds())
	}()

	classifications, err := s.classifier.EvaluateSet(rs, gender)
	if err != nil {
		return nil, err
	}
	matches, err := s.patterns.Detect(rs, gender)
	if err != nil {
		return nil, err
	}
	return &model.AnalysisReport{
		Classifications: classifications,
		Patterns:        matches,
	}, nil
}

func (s *Service) ListRecords(ctx context.Context) ([]*model.AnalysisRecord, error) {
	return s.repo.List(ctx)
}

func (s *Service) PatientHistory(ctx context.Context, patientID string) ([]*model.AnalysisRecord, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Latest returns the patient's most recent record.
func (s *Service) Latest(ctx context.Context, patientID string) (*model.AnalysisRecord, error) {
	record, err := s.repo.LatestFor(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.NewNotFound(fmt.Sprintf("analyses for patient %s", patientID), nil)
	}
	return record, nil
}

// Worklist returns all records ordered for review: urgent before
// routine, newest first within the same priority.
func (s *Service) Worklist(ctx context.Context) ([]*model.AnalysisRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	model.SortWorklist(records)
	return records, nil
}

// TrendsFor compares the patient's two most recent records.
func (s *Service) TrendsFor(ctx context.Context, patientID string) (map[string]model.TrendEntry, error) {
	history, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, errors.NewNotFound(fmt.Sprintf("analyses for patient %s", patientID), nil)
	}

	current, previous := lastTwo(history)
	if previous == nil {
		return map[string]model.TrendEntry{}, nil
	}
	return s.trends.Trend(current.Data, previous.Data, current.SelectedParameters), nil
}

// Report returns the full evaluation of a stored record, rebuilt on
// cache miss.
func (s *Service) Report(ctx context.Context, recordID uuid.UUID) (*model.AnalysisReport, error) {
	if cached, found := s.reports.Get(recordID.String()); found {
		return cached.(*model.AnalysisReport), nil
	}

	record, err := s.repo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.NewNotFound(fmt.Sprintf("analysis record %s", recordID), nil)
	}

	report, err := s.evaluate(record.Data, record.PatientGender)
	if err != nil {
		return nil, err
	}
	report.Record = record
	if vr, err := s.validator.Validate(record.Data, record.SelectedParameters); err == nil {
		report.Validation = vr
	}

	history, err := s.repo.ListByPatient(ctx, record.PatientID)
	if err != nil {
		return nil, err
	}
	if previous := previousOf(history, record.ID); previous != nil {
		report.Trends = s.trends.Trend(record.Data, previous.Data, record.SelectedParameters)
	}
	report.Insights = s.buildInsights(record.SelectedParameters, report)

	s.reports.Set(recordID.String(), report, cache.DefaultExpiration)
	return report, nil
}

// Stats aggregates classification outcomes across every stored record.
func (s *Service) Stats(ctx context.Context) (*model.LabStats, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.LabStats{
		TotalRecords: len(records),
		Parameters:   make(map[string]*model.ParameterStats),
	}
	for _, record := range records {
		if record.Priority == model.PriorityUrgent {
			stats.UrgentRecords++
		}

		classifications, err := s.classifier.EvaluateSet(record.Data, record.PatientGender)
		if err != nil {
			return nil, err
		}

		var abnormal, critical bool
		for code, c := range classifications {
			ps := stats.Parameters[code]
			if ps == nil {
				ps = &model.ParameterStats{}
				stats.Parameters[code] = ps
			}
			ps.Count++
			switch c.Tier {
			case model.TierAbnormalLow:
				ps.Low++
				abnormal = true
			case model.TierAbnormalHigh:
				ps.High++
				abnormal = true
			case model.TierCritical:
				ps.Critical++
				abnormal = true
				critical = true
			}
		}
		if abnormal {
			stats.AbnormalRecords++
		}
		if critical {
			stats.CriticalRecords++
		}
	}
	return stats, nil
}

// Simulate fabricates an analyzer read-out without persisting it.
func (s *Service) Simulate(ctx context.Context, req *model.SimulateRequest) (model.ResultSet, error) {
	return s.simulator.Generate(req.Parameters, req.Gender)
}

// raiseCritical records the integration event and notifies on-call
// channels. Neither failure blocks the submission.
func (s *Service) raiseCritical(ctx context.Context, record *model.AnalysisRecord, report *model.AnalysisReport) {
	alertPayload := &model.CriticalAlert{
		RecordID:    record.ID,
		PatientID:   record.PatientID,
		PatientName: record.PatientName,
		Parameters:  criticalParameterNames(s.catalog, record.SelectedParameters, report.Classifications),
		Patterns:    criticalPatternNames(report.Patterns),
		CreatedAt:   time.Now().UTC(),
	}

	if s.events != nil {
		if err := s.events.Emit(ctx, string(event.TypeAnalysisCritical), alertPayload); err != nil {
			s.logger.Error(err, "failed to record critical event", "record_id", record.ID.String())
		}
	}
	if s.alerts != nil {
		if err := s.alerts.Notify(ctx, alertPayload); err != nil {
			s.logger.Error(err, "failed to notify critical alert", "record_id", record.ID.String())
		}
	}
}

// buildInsights renders the review summary: critical callouts, matched
// patterns and significant trend movements, in parameter order.
func (s *Service) buildInsights(codes []string, report *model.AnalysisReport) []string {
	var insights []string

	for _, code := range codes {
		c, ok := report.Classifications[code]
		if !ok || c.Tier != model.TierCritical {
			continue
		}
		def, ok := s.catalog.Get(code)
		if !ok {
			continue
		}
		insights = append(insights, fmt.Sprintf("CRITICAL: %s = %.2f %s", def.Name, c.Value, def.Unit))
	}

	for _, p := range report.Patterns {
		insights = append(insights, fmt.Sprintf("Pattern detected: %s (%s severity)", p.Name, p.Severity))
	}

	for _, code := range codes {
		t, ok := report.Trends[code]
		if !ok || math.Abs(t.Percent) <= significantTrendPercent {
			continue
		}
		def, ok := s.catalog.Get(code)
		if !ok {
			continue
		}
		insights = append(insights, fmt.Sprintf("%s: %+.1f%% change from previous analysis (%.2f to %.2f %s)",
			def.Name, t.Percent, t.Previous, t.Current, def.Unit))
	}

	if len(insights) == 0 {
		hasAbnormal := false
		for _, c := range report.Classifications {
			if c.Tier.Abnormal() {
				hasAbnormal = true
				break
			}
		}
		if !hasAbnormal {
			insights = append(insights, "All evaluated parameters within normal limits")
		}
	}
	return insights
}

// lastTwo returns the most recent record and its predecessor, using
// the same ordering as LatestFor.
func lastTwo(records []*model.AnalysisRecord) (current, previous *model.AnalysisRecord) {
	for _, r := range records {
		switch {
		case current == nil || !r.Timestamp.Before(current.Timestamp):
			previous = current
			current = r
		case previous == nil || !r.Timestamp.Before(previous.Timestamp):
			previous = r
		}
	}
	return current, previous
}

// previousOf returns the latest record that precedes target in the
// patient's history, by timestamp with insertion order as tie-break.
func previousOf(records []*model.AnalysisRecord, targetID uuid.UUID) *model.AnalysisRecord {
	var previous *model.AnalysisRecord
	for _, r := range records {
		if r.ID == targetID {
			break
		}
		if previous == nil || !r.Timestamp.Before(previous.Timestamp) {
			previous = r
		}
	}
	return previous
}

func sortedCodes(rs model.ResultSet) []string {
	codes := make([]string, 0, len(rs))
	for code := range rs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func criticalParameterNames(cat *catalog.Catalog, codes []string, classifications map[string]model.Classification) []string {
	var names []string
	for _, code := range codes {
		c, ok := classifications[code]
		if !ok || c.Tier != model.TierCritical {
			continue
		}
		if def, found := cat.Get(code); found {
			names = append(names, def.Name)
		} else {
			names = append(names, code)
		}
	}
	return names
}

func criticalPatternNames(matches []model.PatternMatch) []string {
	var names []string
	for _, m := range matches {
		if m.Severity == model.SeverityCritical {
			names = append(names, m.Name)
		}
	}
	return names
}
