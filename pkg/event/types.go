package event

import (
	"context"

	"github.com/labwise/lab-api/internal/model"
)

type EventType string

// Analysis lifecycle event types.
const (
	TypeAnalysisCreate   EventType = "ANALYSIS_CREATE"
	TypeAnalysisCritical EventType = "ANALYSIS_CRITICAL"
)

// EventContext is filled by handlers during a tracked request; the
// tracker turns NewData into the outbox payload after the handler
// runs. Records are never mutated in place, so there is no old state
// to capture.
type EventContext struct {
	Resource  string
	Operation string
	NewData   interface{}
}

type EventService interface {
	CreateEvent(ctx context.Context, event *model.OutboxEvent) error
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type FieldExtractor interface {
	ExtractFields(obj interface{}, fields []string) map[string]interface{}
}
