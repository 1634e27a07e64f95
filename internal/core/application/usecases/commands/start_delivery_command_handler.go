package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/ports"
)

// StartDeliveryCommandHandler moves an assigned order out for delivery and
// flips the driver to the on-delivery state in the same transaction.
type StartDeliveryCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewStartDeliveryCommandHandler creates a handler for delivery starts.
func NewStartDeliveryCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) StartDeliveryCommandHandler {
	return StartDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "start_delivery_handler"),
	}
}

// Handle processes the pickup.
// The order aggregate rejects drivers other than the one bound at claim time
// with errs.NotAuthorizedError.
func (h *StartDeliveryCommandHandler) Handle(ctx context.Context, cmd StartDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	driverRepo := uow.DriverRepository()
	courier, err := driverRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}

	oldStatus := aggregate.Status()
	if err = aggregate.StartDelivery(cmd.DriverID(), time.Now().UTC()); err != nil {
		return err
	}
	if err = courier.StartDelivery(); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}
	if err = driverRepo.Update(ctx, courier); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	event := events.NewOrderStatusChanged(
		aggregate.ID().String(),
		aggregate.Number(),
		aggregate.CustomerID().String(),
		oldStatus.String(),
		aggregate.Status().String(),
		"",
	)
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("event publication failed",
			"event_type", string(event.EventType()),
			"aggregate_id", event.AggregateID(),
			"error", err)
	}

	return nil
}
