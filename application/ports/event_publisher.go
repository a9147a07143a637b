package ports

import (
	"context"

	"braincore/domain/events"
)

// EventPublisher pushes domain events to the event bus.
// Publishing is best effort: formation never fails on a publish error.
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}
