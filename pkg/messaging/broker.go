package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Publisher defines the interface for publishing domain events. Services
// depend on this, not on a concrete broker, so the delivery mechanism
// (outbox, direct pub/sub) stays swappable.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}
