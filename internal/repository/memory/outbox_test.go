package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labwise/lab-api/internal/model"
)

func TestOutboxLifecycle(t *testing.T) {
	store := NewOutboxStore()
	ctx := context.Background()

	event := &model.OutboxEvent{
		EventType: "ANALYSIS_CRITICAL",
		Payload:   json.RawMessage(`{"record_id":"r1"}`),
	}
	require.NoError(t, store.Create(ctx, event))

	pending, err := store.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.OutboxStatusPending, pending[0].Status)

	require.NoError(t, store.MarkProcessed(ctx, pending[0].ID))
	pending, err = store.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	removed, err := store.DeleteProcessedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestOutboxRetrySelection(t *testing.T) {
	store := NewOutboxStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &model.OutboxEvent{
		EventType: "ANALYSIS_CREATE",
		Payload:   json.RawMessage(`{}`),
	}))
	pending, err := store.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	id := pending[0].ID

	future := time.Now().Add(time.Hour)
	require.NoError(t, store.MarkFailed(ctx, id, "broker down", &future))
	pending, err = store.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed event waits for its retry time")

	past := time.Now().Add(-time.Minute)
	require.NoError(t, store.MarkFailed(ctx, id, "broker down", &past))
	pending, err = store.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetryCount)
}
