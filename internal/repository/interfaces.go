package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/labwise/lab-api/internal/model"
)

// All repository interfaces in one file
type (
	// AnalysisRepository is the append-only store of analysis records.
	// List and ListByPatient preserve insertion order.
	AnalysisRepository interface {
		Save(ctx context.Context, record *model.AnalysisRecord) error
		// Get returns (nil, nil) when no record has the given ID.
		Get(ctx context.Context, id uuid.UUID) (*model.AnalysisRecord, error)
		List(ctx context.Context) ([]*model.AnalysisRecord, error)
		ListByPatient(ctx context.Context, patientID string) ([]*model.AnalysisRecord, error)
		// LatestFor returns the patient's record with the most recent
		// timestamp, ties broken by latest insertion. A patient with
		// no records yields (nil, nil).
		LatestFor(ctx context.Context, patientID string) (*model.AnalysisRecord, error)
		Ping(ctx context.Context) error
	}

	// OutboxRepository queues integration events for asynchronous delivery.
	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
