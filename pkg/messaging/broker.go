package messaging

import (
	"context"
)

// Broker is the pub/sub fanout behind outbox dispatch and alert
// delivery. Channel names are event types, so subscribers pick the
// kinds of traffic they want.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope published for outbox events. Payload holds
// the event's original JSON body.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
