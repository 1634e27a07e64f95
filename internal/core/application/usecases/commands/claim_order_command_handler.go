package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/ports"

	"fulfillment/internal/pkg/errs"
)

// ErrDriverIsBusy is returned when a driver tries to claim while already
// carrying a delivery.
var ErrDriverIsBusy = errs.NewConflictError("driver already has an active delivery")

// ClaimOrderCommandHandler resolves driver claims on ready orders.
//
// The claim race is settled by the repository's BindDriver, a single
// conditional write that succeeds for at most one driver no matter how many
// handlers read the order first. The handler never does a read-then-write
// assignment itself.
type ClaimOrderCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewClaimOrderCommandHandler creates a handler for order claims.
func NewClaimOrderCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "claim_order_handler"),
	}
}

// Handle processes the claim.
// Returns errs.ConflictError when the order is already assigned or the driver
// is busy, and errs.ObjectNotFoundError when either aggregate is missing.
func (h *ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) error {
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

	driverRepo := uow.DriverRepository()
	claimant, err := driverRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}
	if claimant.State() == driver.OnDelivery {
		return ErrDriverIsBusy
	}

	orderRepo := uow.OrderRepository()
	if err = orderRepo.BindDriver(ctx, cmd.OrderID(), cmd.DriverID()); err != nil {
		return err
	}

	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	event := events.NewDriverAssigned(
		aggregate.ID().String(),
		aggregate.Number(),
		aggregate.CustomerID().String(),
		cmd.DriverID().String(),
	)
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("event publication failed",
			"event_type", string(event.EventType()),
			"aggregate_id", event.AggregateID(),
			"error", err)
	}

	return nil
}
