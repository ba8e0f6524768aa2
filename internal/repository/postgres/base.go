package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BaseRepository carries the shared database handle. Repositories embed
// it instead of owning their own pool.
type BaseRepository struct {
	db *sqlx.DB
}

func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// Statements are idempotent, so repeated boots against the same
// database are safe. The seq column records insertion order; listings
// and timestamp tie-breaks depend on it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS analyses (
		seq                 BIGSERIAL,
		id                  UUID PRIMARY KEY,
		patient_id          TEXT NOT NULL,
		patient_name        TEXT NOT NULL,
		patient_gender      TEXT NOT NULL,
		patient_age         INTEGER NOT NULL,
		priority            TEXT NOT NULL,
		selected_parameters JSONB NOT NULL,
		data                JSONB NOT NULL,
		recorded_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_patient ON analyses (patient_id, recorded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id            UUID PRIMARY KEY,
		event_type    TEXT NOT NULL,
		payload       JSONB NOT NULL,
		status        TEXT NOT NULL,
		retry_count   INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		retry_at      TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		processed_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_dispatch ON outbox_events (status, created_at)`,
}

// EnsureSchema creates the tables and indexes the repositories expect.
// The API ships without a migration tool; the schema is small enough
// to apply on startup.
func (r *BaseRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
