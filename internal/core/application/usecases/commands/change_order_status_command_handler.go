package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// ChangeOrderStatusCommandHandler applies lifecycle transitions to orders.
// The aggregate is the single authority for which transitions are legal;
// the handler only loads, delegates, persists and publishes.
//
// Cancelling a paid order flips the payment into the refund flow. The refund
// request goes to the payment provider after the transaction commits, and the
// refund settles later through a charge-refunded provider event.
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	refunds    ports.RefundGateway
	logger     *slog.Logger
}

// NewChangeOrderStatusCommandHandler creates a handler for lifecycle transitions.
func NewChangeOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	refunds ports.RefundGateway,
	logger *slog.Logger,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		refunds:    refunds,
		logger:     logger.With("component", "change_order_status_handler"),
	}
}

// Handle processes the transition command.
// Returns the aggregate's error unchanged so the transport layer can map
// invalid transitions to its conflict taxonomy.
func (h *ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) error {
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

	oldStatus := aggregate.Status()
	now := time.Now().UTC()

	if cmd.Target() == order.Cancelled {
		err = aggregate.Cancel(cmd.Reason(), cmd.Actor(), now)
	} else {
		err = aggregate.TransitionTo(cmd.Target(), now)
	}
	if err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publish(ctx, events.NewOrderStatusChanged(
		aggregate.ID().String(),
		aggregate.Number(),
		aggregate.CustomerID().String(),
		oldStatus.String(),
		aggregate.Status().String(),
		cmd.Reason(),
	))

	// A cancellation of a paid order leaves the refund pending. Kick the
	// provider now; failures are logged and the refund stays pending until
	// retried or reconciled by hand.
	if cmd.Target() == order.Cancelled && aggregate.RefundStatus() == order.RefundPending {
		if err := h.refunds.RequestRefund(ctx, aggregate.ID(), aggregate.TransactionID()); err != nil {
			h.logger.Error("refund request failed",
				"order_id", aggregate.ID().String(),
				"transaction_id", aggregate.TransactionID(),
				"error", err)
		}
	}

	return nil
}

func (h *ChangeOrderStatusCommandHandler) publish(ctx context.Context, event events.Event) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("event publication failed",
			"event_type", string(event.EventType()),
			"aggregate_id", event.AggregateID(),
			"error", err)
	}
}
