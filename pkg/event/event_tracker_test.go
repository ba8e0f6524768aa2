package event

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labwise/lab-api/internal/config"
	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/pkg/logger"
)

type captureEventService struct {
	created []*model.OutboxEvent
}

func (s *captureEventService) CreateEvent(ctx context.Context, event *model.OutboxEvent) error {
	s.created = append(s.created, event)
	return nil
}

func (s *captureEventService) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func trackingConfig(enabled bool, fields ...string) *config.EventTrackingConfig {
	return &config.EventTrackingConfig{
		Enabled: true,
		Endpoints: map[string]config.ResourceConfig{
			"analyses": {
				Create: config.EndpointConfig{
					Enabled:       enabled,
					EventType:     "ANALYSIS_CREATE",
					TrackedFields: fields,
				},
			},
		},
	}
}

func performTracked(t *testing.T, tracker *EventTracker, handler gin.HandlerFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/analyses", tracker.TrackEvent("analyses", "create"), handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyses", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestTrackEventCreatesOutboxEvent(t *testing.T) {
	svc := &captureEventService{}
	tracker := NewEventTracker(svc, trackingConfig(true), testLogger())

	performTracked(t, tracker, func(c *gin.Context) {
		if eventCtx, ok := FromContext(c); ok {
			eventCtx.NewData = map[string]interface{}{"patient_id": "P-100"}
		}
		c.Status(http.StatusCreated)
	})

	require.Len(t, svc.created, 1)
	assert.Equal(t, "ANALYSIS_CREATE", svc.created[0].EventType)
	assert.JSONEq(t, `{"patient_id":"P-100"}`, string(svc.created[0].Payload))
}

func TestTrackEventLimitsPayloadToTrackedFields(t *testing.T) {
	svc := &captureEventService{}
	tracker := NewEventTracker(svc, trackingConfig(true, "patient_id"), testLogger())

	performTracked(t, tracker, func(c *gin.Context) {
		if eventCtx, ok := FromContext(c); ok {
			eventCtx.NewData = &struct {
				PatientID string `json:"patient_id"`
				Note      string `json:"note"`
			}{PatientID: "P-100", Note: "do not publish"}
		}
		c.Status(http.StatusCreated)
	})

	require.Len(t, svc.created, 1)
	assert.JSONEq(t, `{"patient_id":"P-100"}`, string(svc.created[0].Payload))
}

func TestTrackEventDisabledEndpointInstallsNothing(t *testing.T) {
	svc := &captureEventService{}
	tracker := NewEventTracker(svc, trackingConfig(false), testLogger())

	performTracked(t, tracker, func(c *gin.Context) {
		_, ok := FromContext(c)
		assert.False(t, ok, "disabled endpoints must not install an event context")
		c.Status(http.StatusCreated)
	})

	assert.Empty(t, svc.created)
}

func TestTrackEventWithoutDataCreatesNoEvent(t *testing.T) {
	svc := &captureEventService{}
	tracker := NewEventTracker(svc, trackingConfig(true), testLogger())

	performTracked(t, tracker, func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	assert.Empty(t, svc.created)
}
