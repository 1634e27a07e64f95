package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"fulfillment/internal/adapters/out/eventbus"
	"fulfillment/internal/core/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	published []events.Event
	err       error
}

func (s *recordingSink) Publish(_ context.Context, event events.Event) error {
	s.published = append(s.published, event)
	return s.err
}

func TestTeePublisher_FansOutToAllSinks(t *testing.T) {
	first := &recordingSink{}
	second := &recordingSink{}
	tee := eventbus.NewTeePublisher(first, second)

	event := events.NewOrderReady("order-1", "ORD-1001", "customer-1", 52.36, 4.89)
	err := tee.Publish(t.Context(), event)

	require.NoError(t, err)
	assert.Len(t, first.published, 1)
	assert.Len(t, second.published, 1)
}

func TestTeePublisher_FailingSinkDoesNotStarveOthers(t *testing.T) {
	failing := &recordingSink{err: errors.New("broker down")}
	healthy := &recordingSink{}
	tee := eventbus.NewTeePublisher(failing, healthy)

	err := tee.Publish(t.Context(), events.NewOrderReady("order-1", "ORD-1001", "customer-1", 52.36, 4.89))

	require.Error(t, err)
	assert.Len(t, healthy.published, 1)
}
