package commands_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()

	destination, err := kernel.NewGeoPoint(52.3676, 4.9041)
	require.NoError(t, err)

	o, err := order.NewOrder(
		kernel.NewUUID(),
		"ORD-1001",
		kernel.NewUUID(),
		destination,
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return o
}

// advanceTo walks the order forward through the lifecycle until it reaches
// the target status.
func advanceTo(t *testing.T, o *order.Order, target order.Status) {
	t.Helper()

	path := []order.Status{
		order.Confirmed, order.Preparing, order.Ready,
		order.OutForDelivery, order.Delivered, order.Completed,
	}
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	for _, next := range path {
		if o.Status() == target {
			return
		}
		if next == order.OutForDelivery {
			// entering transit requires a bound driver
			if o.Driver() == nil {
				require.NoError(t, o.AssignDriver(kernel.NewUUID()))
			}
			require.NoError(t, o.StartDelivery(*o.Driver(), at))
			continue
		}
		require.NoError(t, o.TransitionTo(next, at))
		at = at.Add(time.Minute)
	}
	require.Equal(t, target, o.Status())
}
