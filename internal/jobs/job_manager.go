// Package jobs provides the scheduled background tasks of the fulfillment
// service, built on github.com/robfig/cron/v3. Jobs are coordinated through
// JobManager, which starts and stops them as a unit.
package jobs

import (
	"fmt"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	readyOrderOfferJob *ReadyOrderOfferJob
}

// NewJobManager creates a job manager with all required jobs wired to their
// command handlers.
func NewJobManager(
	offerReadyOrdersHandler commands.OfferReadyOrdersCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		readyOrderOfferJob: NewReadyOrderOfferJob(offerReadyOrdersHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.readyOrderOfferJob.Start(); err != nil {
		return fmt.Errorf("failed to start ready order offer job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.readyOrderOfferJob.Stop()
}
