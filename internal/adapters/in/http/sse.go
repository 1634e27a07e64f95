package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/ports"
)

// broadcastTypes is the set of event types relayed to SSE clients.
var broadcastTypes = []events.Type{
	events.TypeOrderStatusChanged,
	events.TypeDriverAssigned,
	events.TypeLocationUpdated,
	events.TypePaymentUpdated,
	events.TypeOrderReady,
}

// EventStream relays bus events to connected server-sent-event clients.
// Each client owns a buffered channel; a client that cannot keep up has
// frames dropped rather than blocking the publisher.
type EventStream struct {
	mu      sync.Mutex
	clients map[chan sseFrame]struct{}
	logger  *slog.Logger
}

type sseFrame struct {
	eventType string
	payload   []byte
}

// NewEventStream creates an SSE relay with no connected clients.
func NewEventStream(logger *slog.Logger) *EventStream {
	return &EventStream{
		clients: make(map[chan sseFrame]struct{}),
		logger:  logger.With("component", "event_stream"),
	}
}

// Register subscribes the relay to every broadcast event type.
func (s *EventStream) Register(bus ports.EventSubscriber) {
	for _, eventType := range broadcastTypes {
		bus.Subscribe(eventType, s)
	}
}

// Handle implements ports.EventHandler. The event is serialized once and
// fanned out to every connected client.
func (s *EventStream) Handle(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType(), err)
	}

	frame := sseFrame{
		eventType: string(event.EventType()),
		payload:   payload,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		select {
		case client <- frame:
		default:
			s.logger.Warn("dropping event for slow stream client",
				"event_type", frame.eventType)
		}
	}

	return nil
}

// subscribe registers a new client channel. The caller must call
// unsubscribe when the connection closes.
func (s *EventStream) subscribe() chan sseFrame {
	client := make(chan sseFrame, 16)
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()
	return client
}

func (s *EventStream) unsubscribe(client chan sseFrame) {
	s.mu.Lock()
	delete(s.clients, client)
	s.mu.Unlock()
}
