package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/events"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/throttle"
)

// ErrOrderNotInTransit is returned for location reports against an order that
// is not currently out for delivery.
var ErrOrderNotInTransit = errs.NewConflictError("order is not out for delivery")

// ReportLocationCommandHandler ingests driver GPS samples.
//
// Every accepted report updates the stored tracking state: current position,
// bounded history, and the arrival estimate. Outbound customer pushes are
// throttled per order, so a report can be fully persisted yet raise no
// LocationUpdated event. The cadence limiter only gates publication, never
// storage.
type ReportLocationCommandHandler struct {
	uowFactory OrderUoWFactory
	estimator  services.EtaEstimator
	cadence    *throttle.KeyedLimiter
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewReportLocationCommandHandler creates a handler for location reports.
// The cadence limiter is shared across requests; one instance per process.
func NewReportLocationCommandHandler(
	uowFactory OrderUoWFactory,
	estimator services.EtaEstimator,
	cadence *throttle.KeyedLimiter,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ReportLocationCommandHandler {
	return ReportLocationCommandHandler{
		uowFactory: uowFactory,
		estimator:  estimator,
		cadence:    cadence,
		publisher:  publisher,
		logger:     logger.With("component", "report_location_handler"),
	}
}

// Handle processes a GPS sample.
// Returns errs.NotAuthorizedError when the reporting driver is not the one
// bound to the order, and ErrOrderNotInTransit outside the OutForDelivery
// window.
func (h *ReportLocationCommandHandler) Handle(ctx context.Context, cmd ReportLocationCommand) error {
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

	if !aggregate.IsBoundTo(cmd.DriverID()) {
		return order.ErrDriverNotBound
	}
	if aggregate.Status() != order.OutForDelivery {
		return ErrOrderNotInTransit
	}

	if err = aggregate.RecordPosition(cmd.Position()); err != nil {
		return err
	}

	estimate, err := h.estimator.Estimate(cmd.Position(), aggregate.Destination(), time.Now().UTC())
	if err != nil {
		return err
	}
	if err = aggregate.SetETA(estimate.ArrivalAt, estimate.RemainingDistance); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if !h.cadence.Allow(cmd.OrderID().String()) {
		return nil
	}

	pos := cmd.Position()
	event := events.NewLocationUpdated(
		aggregate.ID().String(),
		aggregate.CustomerID().String(),
		cmd.DriverID().String(),
		pos.Point().Latitude(),
		pos.Point().Longitude(),
		pos.Speed(),
		estimate.ArrivalAt,
		estimate.RemainingDistance,
	)
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("event publication failed",
			"event_type", string(event.EventType()),
			"aggregate_id", event.AggregateID(),
			"error", err)
	}

	return nil
}
