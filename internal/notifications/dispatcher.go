// Package notifications fans domain events out to device push notifications.
// The dispatcher is a bus subscriber: it runs after state is committed, and
// nothing it does can roll a write back. Sends are isolated per recipient.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// Dispatcher resolves event recipients and pushes one notification per device
// token. A failed send is logged and skipped; a send rejected with
// ports.ErrInvalidRecipient additionally prunes the stale token from the
// driver record. Zero resolved recipients is a success, not an error.
type Dispatcher struct {
	drivers  ports.DriverRepository
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given driver store and push sender.
func NewDispatcher(drivers ports.DriverRepository, notifier ports.Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		drivers:  drivers,
		notifier: notifier,
		logger:   logger.With("component", "notification_dispatcher"),
	}
}

// Register subscribes the dispatcher to the events it handles.
func (d *Dispatcher) Register(bus ports.EventSubscriber) {
	bus.Subscribe(events.TypeOrderReady, handlerFunc(d.handleOrderReady))
	bus.Subscribe(events.TypeDriverAssigned, handlerFunc(d.handleDriverAssigned))
}

// handleOrderReady offers a claimable order to every available driver.
func (d *Dispatcher) handleOrderReady(ctx context.Context, event events.Event) error {
	ready, ok := event.(events.OrderReady)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	available, err := d.drivers.GetAllAvailable(ctx)
	if err != nil {
		return err
	}

	title := "Order ready for pickup"
	body := fmt.Sprintf("Order %s is waiting for a driver", ready.Number)
	for _, courier := range available {
		d.sendToDriver(ctx, courier, title, body)
	}

	return nil
}

// handleDriverAssigned confirms the claim to the winning driver.
func (d *Dispatcher) handleDriverAssigned(ctx context.Context, event events.Event) error {
	assigned, ok := event.(events.DriverAssigned)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	courier, err := d.resolveDriver(ctx, assigned.DriverID)
	if err != nil {
		return err
	}

	d.sendToDriver(ctx, courier,
		"Order assigned",
		fmt.Sprintf("Order %s is yours, head to the pickup point", assigned.Number))

	return nil
}

// sendToDriver pushes to every token the driver registered. Stale tokens are
// pruned and the pruned set persisted; other failures are logged and skipped.
func (d *Dispatcher) sendToDriver(ctx context.Context, courier *driver.Driver, title, body string) {
	pruned := false
	for _, token := range courier.DeviceTokens() {
		err := d.notifier.Send(ctx, token, title, body)
		if err == nil {
			continue
		}
		if errors.Is(err, ports.ErrInvalidRecipient) {
			courier.PruneDeviceToken(token)
			pruned = true
			d.logger.Info("pruned stale device token",
				"driver_id", courier.ID().String())
			continue
		}
		d.logger.Warn("notification send failed",
			"driver_id", courier.ID().String(),
			"error", err)
	}

	if pruned {
		if err := d.drivers.Update(ctx, courier); err != nil {
			d.logger.Error("failed to persist pruned tokens",
				"driver_id", courier.ID().String(),
				"error", err)
		}
	}
}

func (d *Dispatcher) resolveDriver(ctx context.Context, id string) (*driver.Driver, error) {
	driverID, err := kernel.UUIDFromString(id)
	if err != nil {
		return nil, err
	}
	return d.drivers.Get(ctx, driverID)
}

// handlerFunc adapts a method to ports.EventHandler.
type handlerFunc func(ctx context.Context, event events.Event) error

func (f handlerFunc) Handle(ctx context.Context, event events.Event) error {
	return f(ctx, event)
}
