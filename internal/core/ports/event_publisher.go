package ports

import (
	"context"

	"fulfillment/internal/core/domain/events"
)

// EventPublisher delivers domain events to interested subscribers.
// Publication happens after the owning transaction commits; implementations
// must not block the caller on slow consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// EventHandler handles a single delivered event. Handler failures are the
// handler's own problem: the bus logs them and keeps fanning out.
type EventHandler interface {
	Handle(ctx context.Context, event events.Event) error
}

// EventSubscriber registers handlers for event types.
type EventSubscriber interface {
	Subscribe(eventType events.Type, handler EventHandler)
}
