package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/ports"
)

// OfferReadyOrdersCommandHandler publishes an OrderReady event for every
// ready order without a driver. Publication is read-only with respect to
// order state; claiming stays subject to the conditional driver binding, so
// offering the same order to many drivers is safe.
type OfferReadyOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewOfferReadyOrdersCommandHandler creates a handler for the ready-order offer sweep.
func NewOfferReadyOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) OfferReadyOrdersCommandHandler {
	return OfferReadyOrdersCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "offer_ready_orders_handler"),
	}
}

// Handle publishes one OrderReady event per claimable order.
func (h OfferReadyOrdersCommandHandler) Handle(ctx context.Context, command OfferReadyOrdersCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetAllReadyUnassigned(ctx)
	if err != nil {
		return err
	}

	for _, o := range orders {
		event := events.NewOrderReady(
			o.ID().String(),
			o.Number(),
			o.CustomerID().String(),
			o.Destination().Latitude(),
			o.Destination().Longitude(),
		)
		if err := h.publisher.Publish(ctx, event); err != nil {
			h.logger.Warn("failed to publish order ready event",
				"order_id", o.ID().String(),
				"error", err)
		}
	}

	return nil
}
