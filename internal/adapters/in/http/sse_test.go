package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"fulfillment/internal/adapters/out/eventbus"
	"fulfillment/internal/core/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventStream_RelaysBusEventsToClients(t *testing.T) {
	bus := eventbus.New(newStreamTestLogger())
	stream := NewEventStream(newStreamTestLogger())
	stream.Register(bus)

	client := stream.subscribe()
	defer stream.unsubscribe(client)

	event := events.NewDriverAssigned("order-1", "ORD-1001", "customer-1", "driver-1")
	require.NoError(t, bus.Publish(t.Context(), event))

	frame := <-client
	assert.Equal(t, string(events.TypeDriverAssigned), frame.eventType)

	var decoded struct {
		OrderID  string `json:"order_id"`
		DriverID string `json:"driver_id"`
	}
	require.NoError(t, json.Unmarshal(frame.payload, &decoded))
	assert.Equal(t, "order-1", decoded.OrderID)
	assert.Equal(t, "driver-1", decoded.DriverID)
}

func TestEventStream_SlowClientDoesNotBlockPublish(t *testing.T) {
	bus := eventbus.New(newStreamTestLogger())
	stream := NewEventStream(newStreamTestLogger())
	stream.Register(bus)

	client := stream.subscribe()
	defer stream.unsubscribe(client)

	// Fill the client buffer past capacity; publishing must not block.
	for i := 0; i < 32; i++ {
		require.NoError(t, bus.Publish(t.Context(),
			events.NewOrderReady("order-1", "ORD-1001", "customer-1", 52.36, 4.89)))
	}

	assert.Equal(t, 16, len(client))
}

func TestEventStream_UnsubscribedClientReceivesNothing(t *testing.T) {
	bus := eventbus.New(newStreamTestLogger())
	stream := NewEventStream(newStreamTestLogger())
	stream.Register(bus)

	client := stream.subscribe()
	stream.unsubscribe(client)

	require.NoError(t, bus.Publish(t.Context(),
		events.NewOrderReady("order-1", "ORD-1001", "customer-1", 52.36, 4.89)))

	assert.Empty(t, client)
}
