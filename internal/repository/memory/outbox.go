package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labwise/lab-api/internal/model"
)

// OutboxStore is an in-process outbox for single-binary deployments
// where no database is configured. Events survive only as long as the
// process.
type OutboxStore struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

// NewOutboxStore creates an empty in-memory outbox.
func NewOutboxStore() *OutboxStore {
	return &OutboxStore{}
}

func (s *OutboxStore) Create(ctx context.Context, event *model.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *event
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	e.Status = model.OutboxStatusPending
	s.events = append(s.events, &e)
	return nil
}

func (s *OutboxStore) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var out []*model.OutboxEvent
	for _, e := range s.events {
		if len(out) >= limit {
			break
		}
		switch e.Status {
		case model.OutboxStatusPending:
			out = append(out, cloneEvent(e))
		case model.OutboxStatusFailed:
			if e.RetryAt != nil && !e.RetryAt.After(now) {
				out = append(out, cloneEvent(e))
			}
		}
	}
	return out, nil
}

func (s *OutboxStore) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ID == id {
			now := time.Now()
			e.Status = model.OutboxStatusProcessed
			e.ProcessedAt = &now
			e.UpdatedAt = now
			e.ErrorMessage = nil
			return nil
		}
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ID == id {
			e.Status = model.OutboxStatusFailed
			e.ErrorMessage = &errMsg
			e.RetryCount++
			e.RetryAt = retryAt
			e.UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

func (s *OutboxStore) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var removed int64
	for _, e := range s.events {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed, nil
}

func cloneEvent(e *model.OutboxEvent) *model.OutboxEvent {
	out := *e
	return &out
}
