package agent

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/justingibbs/crabgrass/internal/queue"
)

// Orchestrator runs every agent loop plus the queue janitor under one
// shared context. Loops only exit on cancellation, so one agent's bad batch
// never takes down its siblings.
type Orchestrator struct {
	runner  *Runner
	janitor *queue.Janitor
	agents  []Agent
	logger  *slog.Logger
}

// NewOrchestrator builds an orchestrator. janitor may be nil when stale
// item reclaim runs elsewhere.
func NewOrchestrator(runner *Runner, janitor *queue.Janitor, logger *slog.Logger, agents ...Agent) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{runner: runner, janitor: janitor, agents: agents, logger: logger}
}

// Run blocks until ctx is cancelled, then waits for every loop to drain its
// in-flight item. Returns nil on a clean cancellation.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if o.janitor != nil {
		if err := o.janitor.Start(ctx); err != nil {
			return err
		}
		defer o.janitor.Stop()
	}

	for _, a := range o.agents {
		g.Go(func() error {
			return o.runner.RunLoop(ctx, a)
		})
	}
	o.logger.Info("orchestrator running", "agents", len(o.agents))

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
