package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RecordPaymentEventCommandHandler reconciles payment provider events with
// order state.
//
// The provider retries webhooks and may deliver the same event several times,
// possibly out of order with customer actions. All payment mutations on the
// aggregate are last-value-wins, so replays converge to the same state. An
// event that references no known order is logged and absorbed: the provider
// must always get an acknowledgement, otherwise it retries forever.
type RecordPaymentEventCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewRecordPaymentEventCommandHandler creates a handler for provider events.
func NewRecordPaymentEventCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) RecordPaymentEventCommandHandler {
	return RecordPaymentEventCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "record_payment_event_handler"),
	}
}

// Handle processes one provider event.
// Returns nil for events referencing unknown orders; the anomaly is logged.
func (h *RecordPaymentEventCommandHandler) Handle(ctx context.Context, cmd RecordPaymentEventCommand) error {
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
	aggregate, err := h.resolveOrder(ctx, orderRepo, cmd)
	if err != nil {
		var notFound *errs.ObjectNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, errs.ErrObjectNotFound) {
			h.logger.Warn("payment event for unknown order absorbed",
				"event_id", cmd.EventID(),
				"kind", string(cmd.Kind()),
				"transaction_id", cmd.TransactionID())
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	oldStatus := aggregate.Status()
	before := paymentSnapshot(aggregate)
	advanced := false

	switch cmd.Kind() {
	case PaymentCaptureSucceeded:
		aggregate.MarkPaid(cmd.TransactionID(), now)
		if aggregate.Status() == order.Pending {
			if err = aggregate.TransitionTo(order.Confirmed, now); err != nil {
				return err
			}
			advanced = true
		}
	case PaymentCaptureFailed:
		aggregate.MarkPaymentFailed(cmd.Reason())
	case PaymentCaptureCanceled:
		aggregate.ResetPaymentToPending()
	case PaymentChargeRefunded:
		aggregate.MarkRefunded(cmd.Amount(), cmd.TransactionID(), now)
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	// Replayed events converge to a state the order already holds. Customers
	// are notified only when the event actually moved the payment state.
	if paymentSnapshot(aggregate) != before {
		h.publish(ctx, events.NewPaymentUpdated(
			aggregate.ID().String(),
			aggregate.Number(),
			aggregate.CustomerID().String(),
			aggregate.PaymentStatus().String(),
			aggregate.RefundStatus().String(),
			string(cmd.Kind()),
		))
	} else {
		h.logger.Info("payment event replay absorbed without notification",
			"event_id", cmd.EventID(),
			"kind", string(cmd.Kind()),
			"order_id", aggregate.ID().String())
	}

	if advanced {
		h.publish(ctx, events.NewOrderStatusChanged(
			aggregate.ID().String(),
			aggregate.Number(),
			aggregate.CustomerID().String(),
			oldStatus.String(),
			aggregate.Status().String(),
			"",
		))
	}

	return nil
}

type paymentState struct {
	payment       order.PaymentStatus
	refund        order.RefundStatus
	refundAmount  int64
	failureReason string
}

func paymentSnapshot(o *order.Order) paymentState {
	return paymentState{
		payment:       o.PaymentStatus(),
		refund:        o.RefundStatus(),
		refundAmount:  o.RefundAmount(),
		failureReason: o.PaymentFailureReason(),
	}
}

func (h *RecordPaymentEventCommandHandler) resolveOrder(
	ctx context.Context,
	orderRepo ports.OrderRepository,
	cmd RecordPaymentEventCommand,
) (*order.Order, error) {
	if cmd.OrderID().Validate() == nil {
		return orderRepo.Get(ctx, cmd.OrderID())
	}
	return orderRepo.GetByTransactionID(ctx, cmd.TransactionID())
}

func (h *RecordPaymentEventCommandHandler) publish(ctx context.Context, event events.Event) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("event publication failed",
			"event_type", string(event.EventType()),
			"aggregate_id", event.AggregateID(),
			"error", err)
	}
}
