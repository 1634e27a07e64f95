package eventbus_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"fulfillment/internal/adapters/out/eventbus"
	"fulfillment/internal/core/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus() *eventbus.InMemoryEventBus {
	return eventbus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestInMemoryEventBus_DeliversToSubscribers(t *testing.T) {
	bus := newBus()

	var received []string
	bus.Subscribe(events.TypeOrderReady, eventbus.HandlerFunc(
		func(_ context.Context, event events.Event) error {
			received = append(received, event.AggregateID())
			return nil
		}))

	event := events.NewOrderReady("order-1", "ORD-1001", "customer-1", 52.36, 4.89)
	require.NoError(t, bus.Publish(t.Context(), event))

	assert.Equal(t, []string{"order-1"}, received)
}

func TestInMemoryEventBus_NoSubscribersIsNotAnError(t *testing.T) {
	bus := newBus()

	event := events.NewOrderReady("order-1", "ORD-1001", "customer-1", 52.36, 4.89)

	require.NoError(t, bus.Publish(t.Context(), event))
}

func TestInMemoryEventBus_HandlerFailureDoesNotStopFanOut(t *testing.T) {
	bus := newBus()

	var delivered int
	bus.Subscribe(events.TypeOrderReady, eventbus.HandlerFunc(
		func(context.Context, events.Event) error {
			return errors.New("handler exploded")
		}))
	bus.Subscribe(events.TypeOrderReady, eventbus.HandlerFunc(
		func(context.Context, events.Event) error {
			delivered++
			return nil
		}))

	event := events.NewOrderReady("order-1", "ORD-1001", "customer-1", 52.36, 4.89)
	require.NoError(t, bus.Publish(t.Context(), event))

	assert.Equal(t, 1, delivered)
}

func TestInMemoryEventBus_FiltersByEventType(t *testing.T) {
	bus := newBus()

	var readyCount, statusCount int
	bus.Subscribe(events.TypeOrderReady, eventbus.HandlerFunc(
		func(context.Context, events.Event) error {
			readyCount++
			return nil
		}))
	bus.Subscribe(events.TypeOrderStatusChanged, eventbus.HandlerFunc(
		func(context.Context, events.Event) error {
			statusCount++
			return nil
		}))

	require.NoError(t, bus.Publish(t.Context(),
		events.NewOrderStatusChanged("order-1", "ORD-1001", "customer-1", "pending", "confirmed", "")))

	assert.Zero(t, readyCount)
	assert.Equal(t, 1, statusCount)
}
