package event

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/labwise/lab-api/internal/config"
	"github.com/labwise/lab-api/internal/middleware"
	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/pkg/logger"
)

// ContextEventKey is where TrackEvent installs the per-request event
// context for handlers to fill.
const ContextEventKey = "eventCtx"

// EventTracker turns handler results into outbox events, gated by the
// event tracking configuration.
type EventTracker struct {
	eventService EventService
	cfg          *config.EventTrackingConfig
	extractor    FieldExtractor
	logger       *logger.Logger
}

func NewEventTracker(eventSvc EventService, cfg *config.EventTrackingConfig, log *logger.Logger) *EventTracker {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &EventTracker{
		eventService: eventSvc,
		cfg:          cfg,
		extractor:    &DefaultFieldExtractor{},
		logger:       log,
	}
}

// FromContext returns the event context TrackEvent installed, if any.
func FromContext(c *gin.Context) (*EventContext, bool) {
	v, ok := c.Get(ContextEventKey)
	if !ok {
		return nil, false
	}
	eventCtx, ok := v.(*EventContext)
	return eventCtx, ok
}

// TrackEvent records an outbox event after the handler runs, carrying
// whatever the handler placed in the event context's NewData. Tracking
// failures are logged, never surfaced to the client.
func (t *EventTracker) TrackEvent(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint, enabled := t.cfg.Endpoint(resource, action)
		if !enabled {
			c.Next()
			return
		}

		eventCtx := &EventContext{
			Resource:  resource,
			Operation: action,
		}
		c.Set(ContextEventKey, eventCtx)

		c.Next()

		if eventCtx.NewData == nil {
			return
		}

		payload := eventCtx.NewData
		if len(endpoint.TrackedFields) > 0 {
			payload = t.extractor.ExtractFields(payload, endpoint.TrackedFields)
		}
		data, err := json.Marshal(payload)
		if err != nil {
			t.logger.Error(err, "failed to marshal event payload", "resource", resource)
			return
		}

		eventType := endpoint.EventType
		if eventType == "" {
			eventType = fmt.Sprintf("%s_%s", strings.ToUpper(resource), strings.ToUpper(action))
		}

		outboxEvent := &model.OutboxEvent{
			EventType: eventType,
			Payload:   data,
		}
		if requestID := c.GetString(middleware.ContextRequestID); requestID != "" {
			outboxEvent.Headers = map[string]string{"request_id": requestID}
		}

		if err := t.eventService.CreateEvent(c.Request.Context(), outboxEvent); err != nil {
			t.logger.Error(err, "failed to create outbox event", "event_type", eventType)
		}
	}
}
