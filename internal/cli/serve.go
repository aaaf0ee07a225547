package cli

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/justingibbs/crabgrass/internal/agent"
	"github.com/justingibbs/crabgrass/internal/concept"
	"github.com/justingibbs/crabgrass/internal/config"
	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/registry"
	"github.com/justingibbs/crabgrass/internal/store"
	"github.com/justingibbs/crabgrass/internal/syncs"
)

// NewServeCommand creates the serve command: the full stack, running until
// SIGINT or SIGTERM.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Run the event bus, handlers, and background agents",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	logger := slog.Default()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitFailure, "load config", err)
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return WrapExitError(ExitFailure, "load registry", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer st.Close()

	// Local deterministic ports: no network, no model. Swap points for real
	// embedding and detection services.
	embedder := agent.NewLocalEmbedder()
	index := agent.NewStoreIndex(st)
	detector := agent.KeywordDetector{}

	bus := event.NewBus(logger)
	queues := queue.New(st, queue.WithMaxAttempts(cfg.MaxAttempts), queue.WithLogger(logger))
	concepts := concept.NewSet(st, bus, nil)

	handlers := syncs.NewHandlers(st, queues, embedder, nil, logger)
	if err := syncs.NewDispatcher(handlers, logger).Wire(reg, bus); err != nil {
		return WrapExitError(ExitFailure, "wire registry", err)
	}

	runner := agent.NewRunner(queues,
		agent.WithPollInterval(cfg.PollInterval.Std()),
		agent.WithBatchSize(cfg.BatchSize),
		agent.WithLogger(logger),
	)
	janitor := queue.NewJanitor(queues, cfg.ReclaimAfter.Std(), cfg.CompletedTTL.Std(), logger)
	orchestrator := agent.NewOrchestrator(runner, janitor, logger,
		agent.NewConnectionAgent(st, bus, embedder, index, logger),
		agent.NewNurtureAgent(st, queues, embedder, index, detector, logger),
		agent.NewSurfacingAgent(st, concepts.Notifications, logger),
		agent.NewObjectiveAgent(st, bus, embedder, index, logger),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("serving", "database", cfg.Database, "events", len(reg.Entries()))
	if err := orchestrator.Run(ctx); err != nil {
		return WrapExitError(ExitCommandError, "orchestrator", err)
	}
	logger.Info("shut down cleanly")
	return nil
}

// loadRegistry returns the effective registry: the CUE override when the
// config names one, the default wiring otherwise.
func loadRegistry(cfg config.Config) (*registry.Registry, error) {
	if cfg.Registry == "" {
		return registry.Default(), nil
	}
	return registry.LoadCUE(cfg.Registry)
}
