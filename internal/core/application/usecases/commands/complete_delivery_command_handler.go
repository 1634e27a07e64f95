package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/ports"
)

// CompleteDeliveryCommandHandler settles a delivery run: the order becomes
// Delivered and the driver returns to the available pool with the completed
// delivery counted. Both writes share one transaction so the driver's stats
// never drift from the order history.
type CompleteDeliveryCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewCompleteDeliveryCommandHandler creates a handler for delivery completions.
func NewCompleteDeliveryCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "complete_delivery_handler"),
	}
}

// Handle processes the completion.
func (h *CompleteDeliveryCommandHandler) Handle(ctx context.Context, cmd CompleteDeliveryCommand) error {
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
	if err = aggregate.CompleteDelivery(cmd.DriverID(), cmd.Notes(), time.Now().UTC()); err != nil {
		return err
	}
	if err = courier.FinishDelivery(); err != nil {
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
