package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// ReadyOrderOfferJob periodically re-offers unclaimed ready orders.
// Runs every five seconds so drivers that connect after an order became
// ready still receive the offer.
type ReadyOrderOfferJob struct {
	handler commands.OfferReadyOrdersCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewReadyOrderOfferJob creates the offer sweep job over the given handler.
func NewReadyOrderOfferJob(handler commands.OfferReadyOrdersCommandHandler, logger *slog.Logger) *ReadyOrderOfferJob {
	return &ReadyOrderOfferJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "ready_order_offer_job"),
	}
}

// Start schedules the offer sweep every five seconds.
func (j *ReadyOrderOfferJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewOfferReadyOrdersCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Ready order offer sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Ready order offer job started (running every five seconds)")
	return nil
}

// Stop stops the offer sweep.
func (j *ReadyOrderOfferJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Ready order offer job stopped")
}
