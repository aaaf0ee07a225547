package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor runs periodic queue maintenance: reclaiming items stranded in
// processing by a crashed worker, and pruning old completed items.
type Janitor struct {
	queues       *Queues
	cron         *cron.Cron
	reclaimAfter time.Duration
	completedTTL time.Duration
	logger       *slog.Logger
}

// NewJanitor configures maintenance sweeps. reclaimAfter is how long a
// processing claim may stand before it is considered stranded; completedTTL
// is how long completed items are kept.
func NewJanitor(queues *Queues, reclaimAfter, completedTTL time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		queues:       queues,
		cron:         cron.New(),
		reclaimAfter: reclaimAfter,
		completedTTL: completedTTL,
		logger:       logger,
	}
}

// Start schedules the sweeps and begins running them in the cron's own
// goroutine. Reclaim runs every minute, cleanup hourly.
func (j *Janitor) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc("@every 1m", func() { j.reclaim(ctx) }); err != nil {
		return err
	}
	if _, err := j.cron.AddFunc("@every 1h", func() { j.cleanup(ctx) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("queue janitor started",
		"reclaim_after", j.reclaimAfter.String(), "completed_ttl", j.completedTTL.String())
	return nil
}

// Stop halts the schedule and waits for any running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("queue janitor stopped")
}

func (j *Janitor) reclaim(ctx context.Context) {
	moved, err := j.queues.ReclaimStale(ctx, j.reclaimAfter)
	if err != nil {
		j.logger.Error("reclaim sweep failed", "error", err)
		return
	}
	if moved > 0 {
		j.logger.Info("reclaimed stranded items", "count", moved)
	}
}

func (j *Janitor) cleanup(ctx context.Context) {
	deleted, err := j.queues.CleanupCompleted(ctx, j.completedTTL)
	if err != nil {
		j.logger.Error("cleanup sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		j.logger.Info("pruned completed items", "count", deleted)
	}
}
