package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/justingibbs/crabgrass/internal/queue"
)

// An Agent drains one queue. Process handles a single claimed item; an
// error sends the item through the queue's retry path.
type Agent interface {
	Name() string
	Queue() queue.Name
	Process(ctx context.Context, item *queue.Item) error
}

const (
	// DefaultPollInterval is how long a loop sleeps after an empty batch.
	DefaultPollInterval = 5 * time.Second

	// DefaultBatchSize is how many items one pass claims.
	DefaultBatchSize = 10
)

// Runner drives agents against their queues.
type Runner struct {
	queues       *queue.Queues
	pollInterval time.Duration
	batchSize    int
	logger       *slog.Logger
}

// RunnerOption adjusts a Runner.
type RunnerOption func(*Runner)

func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

func WithBatchSize(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(q *queue.Queues, opts ...RunnerOption) *Runner {
	r := &Runner{
		queues:       q,
		pollInterval: DefaultPollInterval,
		batchSize:    DefaultBatchSize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce claims one batch for a and processes it. A failing item is routed
// through the queue's retry path and never stops the rest of the batch.
// Returns how many items were processed and how many failed.
func (r *Runner) RunOnce(ctx context.Context, a Agent) (processed, failed int, err error) {
	items, err := r.queues.Dequeue(ctx, a.Queue(), r.batchSize)
	if err != nil {
		return 0, 0, err
	}

	for i := range items {
		item := &items[i]
		if err := a.Process(ctx, item); err != nil {
			failed++
			r.logger.Error("agent item failed",
				"agent", a.Name(), "item", item.ID, "attempts", item.Attempts, "error", err)
			if failErr := r.queues.Fail(ctx, a.Queue(), item.ID, err); failErr != nil {
				r.logger.Error("queue fail bookkeeping",
					"agent", a.Name(), "item", item.ID, "error", failErr)
			}
			continue
		}
		processed++
		if err := r.queues.Complete(ctx, item.ID); err != nil {
			r.logger.Error("queue complete bookkeeping",
				"agent", a.Name(), "item", item.ID, "error", err)
		}
	}
	return processed, failed, nil
}

// RunLoop polls a's queue until ctx is cancelled. Empty batches sleep the
// poll interval; dequeue errors are logged and retried after the same
// sleep.
func (r *Runner) RunLoop(ctx context.Context, a Agent) error {
	r.logger.Info("agent loop started", "agent", a.Name(), "queue", a.Queue())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		processed, failed, err := r.RunOnce(ctx, a)
		if err != nil {
			r.logger.Error("agent batch", "agent", a.Name(), "error", err)
		}
		if processed+failed > 0 && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.pollInterval):
		}
	}
}
