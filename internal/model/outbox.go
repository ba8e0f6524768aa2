package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus tracks an event through dispatch. Pending events are
// waiting for a processor pass, failed ones are parked until RetryAt,
// processed ones only remain for the cleanup worker to collect.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// OutboxEvent is the durable record behind publish-after-commit. The
// payload is stored as raw JSON and republished byte for byte.
type OutboxEvent struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	EventType string          `db:"event_type" json:"event_type"`
	Payload   json.RawMessage `db:"payload" json:"payload"`

	// Headers carry request correlation metadata. Only the in-memory
	// store keeps them; the relational store does not persist headers.
	Headers map[string]string `db:"-" json:"headers,omitempty"`

	Status       OutboxStatus `db:"status" json:"status"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int          `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time   `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time   `db:"processed_at" json:"processed_at,omitempty"`
}
