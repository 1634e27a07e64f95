// Package eventbus provides an in-memory event bus wiring command handlers to
// in-process consumers: the notification dispatcher and the SSE broadcast.
// Delivery is synchronous and best-effort; a failing handler never blocks the
// rest of the fan-out.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/ports"
)

// InMemoryEventBus implements a simple synchronous event bus.
// Events are delivered in publication order, in the publisher's goroutine.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[events.Type][]ports.EventHandler
	logger   *slog.Logger
}

// New creates an empty bus.
func New(logger *slog.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[events.Type][]ports.EventHandler),
		logger:   logger.With("component", "eventbus"),
	}
}

// Publish implements ports.EventPublisher. Handler failures are logged and do
// not stop delivery to the remaining handlers.
func (b *InMemoryEventBus) Publish(ctx context.Context, event events.Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	b.logger.Debug("publishing event",
		slog.String("event_type", string(event.EventType())),
		slog.String("event_id", event.EventID()),
		slog.Int("handler_count", len(handlers)))

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				slog.String("event_type", string(event.EventType())),
				slog.String("event_id", event.EventID()),
				slog.Any("error", err))
		}
	}

	return nil
}

// Subscribe implements ports.EventSubscriber.
func (b *InMemoryEventBus) Subscribe(eventType events.Type, handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debug("subscribed to event", slog.String("event_type", string(eventType)))
}

// HandlerFunc is an adapter to use ordinary functions as event handlers.
type HandlerFunc func(ctx context.Context, event events.Event) error

func (f HandlerFunc) Handle(ctx context.Context, event events.Event) error {
	return f(ctx, event)
}
