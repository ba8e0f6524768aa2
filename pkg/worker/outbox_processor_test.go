package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/internal/repository/memory"
	"github.com/labwise/lab-api/pkg/logger"
	"github.com/labwise/lab-api/pkg/messaging"
	"github.com/labwise/lab-api/pkg/metrics"
)

type publishedMessage struct {
	channel string
	message interface{}
}

type fakeBroker struct {
	mu          sync.Mutex
	published   []publishedMessage
	failChannel string
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failChannel != "" && channel == b.failChannel {
		return fmt.Errorf("broker unavailable")
	}
	b.published = append(b.published, publishedMessage{channel: channel, message: message})
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) messages() []publishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publishedMessage, len(b.published))
	copy(out, b.published)
	return out
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func seedEvent(t *testing.T, store *memory.OutboxStore, eventType string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := store.Create(context.Background(), &model.OutboxEvent{
		ID:        id,
		EventType: eventType,
		Payload:   json.RawMessage(`{"patient_id":"P-001"}`),
	})
	require.NoError(t, err)
	return id
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	store := memory.NewOutboxStore()
	broker := &fakeBroker{}

	assert.Panics(t, func() {
		NewOutboxProcessor(store, broker, OutboxProcessorConfig{
			PollInterval:  time.Second,
			RetryAttempts: 1,
			RetryDelay:    time.Second,
		}, testLogger(), metrics.New("worker_test"))
	})
}

func TestProcessEventsPublishesPending(t *testing.T) {
	store := memory.NewOutboxStore()
	broker := &fakeBroker{}
	processor := NewOutboxProcessor(store, broker, testConfig(), testLogger(), metrics.New("worker_test_publish"))

	seedEvent(t, store, "ANALYSIS_CREATE")
	seedEvent(t, store, "ANALYSIS_CRITICAL")

	err := processor.ProcessEvents(context.Background())
	require.NoError(t, err)

	published := broker.messages()
	require.Len(t, published, 2)
	assert.Equal(t, "ANALYSIS_CREATE", published[0].channel)
	assert.Equal(t, "ANALYSIS_CRITICAL", published[1].channel)

	msg, ok := published[0].message.(messaging.Message)
	require.True(t, ok)
	assert.Equal(t, "ANALYSIS_CREATE", msg.Type)
	assert.JSONEq(t, `{"patient_id":"P-001"}`, string(msg.Payload.(json.RawMessage)))

	pending, err := store.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "processed events must not be re-delivered")
}

func TestProcessEventsSchedulesRetryOnFailure(t *testing.T) {
	store := memory.NewOutboxStore()
	broker := &fakeBroker{failChannel: "ANALYSIS_CRITICAL"}
	cfg := testConfig()
	// A single attempt with a long delay keeps the test fast while
	// still scheduling the retry well into the future.
	cfg.RetryAttempts = 1
	cfg.RetryDelay = time.Minute
	processor := NewOutboxProcessor(store, broker, cfg, testLogger(), metrics.New("worker_test_retry"))

	seedEvent(t, store, "ANALYSIS_CRITICAL")

	err := processor.ProcessEvents(context.Background())
	require.NoError(t, err, "a failed event is rescheduled, not a batch error")

	assert.Empty(t, broker.messages())

	// The event is parked until its retry time, so an immediate poll
	// must not see it.
	pending, err := store.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessEventsContinuesPastFailedEvent(t *testing.T) {
	store := memory.NewOutboxStore()
	broker := &fakeBroker{failChannel: "ANALYSIS_CRITICAL"}
	cfg := testConfig()
	cfg.RetryAttempts = 1
	cfg.RetryDelay = time.Minute
	processor := NewOutboxProcessor(store, broker, cfg, testLogger(), metrics.New("worker_test_continue"))

	seedEvent(t, store, "ANALYSIS_CRITICAL")
	seedEvent(t, store, "ANALYSIS_CREATE")

	err := processor.ProcessEvents(context.Background())
	require.NoError(t, err)

	published := broker.messages()
	require.Len(t, published, 1)
	assert.Equal(t, "ANALYSIS_CREATE", published[0].channel)
}

func TestProcessEventsRedeliversAfterRetryAt(t *testing.T) {
	store := memory.NewOutboxStore()
	broker := &fakeBroker{}
	processor := NewOutboxProcessor(store, broker, testConfig(), testLogger(), metrics.New("worker_test_redeliver"))

	id := seedEvent(t, store, "ANALYSIS_CREATE")
	retryAt := time.Now().Add(-time.Second)
	require.NoError(t, store.MarkFailed(context.Background(), id, "broker unavailable", &retryAt))

	err := processor.ProcessEvents(context.Background())
	require.NoError(t, err)

	require.Len(t, broker.messages(), 1)
	pending, err := store.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCleanupDeletesOldProcessedEvents(t *testing.T) {
	store := memory.NewOutboxStore()

	id := seedEvent(t, store, "ANALYSIS_CREATE")
	require.NoError(t, store.MarkProcessed(context.Background(), id))
	seedEvent(t, store, "ANALYSIS_CRITICAL")

	time.Sleep(20 * time.Millisecond)

	worker := NewOutboxCleanupWorker(store, 10*time.Millisecond, time.Hour, testLogger())
	require.NoError(t, worker.cleanup(context.Background()))

	// The pending event survives the purge.
	pending, err := store.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ANALYSIS_CRITICAL", pending[0].EventType)
}
