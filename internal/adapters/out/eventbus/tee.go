package eventbus

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/ports"
)

// TeePublisher publishes every event to all configured sinks. It is used to
// mirror the in-process bus to an external broadcast channel. Every sink
// receives the event even when an earlier sink fails; failures are joined
// into one error for the caller to log.
type TeePublisher struct {
	sinks []ports.EventPublisher
}

// NewTeePublisher creates a publisher fanning out to the given sinks.
func NewTeePublisher(sinks ...ports.EventPublisher) *TeePublisher {
	return &TeePublisher{sinks: sinks}
}

// Publish sends the event to every sink.
func (t *TeePublisher) Publish(ctx context.Context, event events.Event) error {
	var errs []error
	for _, sink := range t.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
