package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justingibbs/crabgrass/internal/config"
	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/store"
)

// QueueStatus is one queue's item counts by status.
type QueueStatus struct {
	Queue      string `json:"queue"`
	Pending    int    `json:"pending"`
	Processing int    `json:"processing"`
	Completed  int    `json:"completed"`
	Failed     int    `json:"failed"`
}

// NewQueuesCommand creates the queues command: per-queue status counts.
func NewQueuesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "queues",
		Short:         "Show item counts for every work queue",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueues(cmd, rootOpts)
		},
	}
}

func runQueues(cmd *cobra.Command, opts *RootOptions) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitFailure, "load config", err)
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer st.Close()

	queues := queue.New(st)
	statuses := make([]QueueStatus, 0, len(queue.AllNames()))
	for _, name := range queue.AllNames() {
		counts, err := queues.Counts(cmd.Context(), name)
		if err != nil {
			return WrapExitError(ExitCommandError, "count queue items", err)
		}
		statuses = append(statuses, QueueStatus{
			Queue:      string(name),
			Pending:    counts[store.QueueStatusPending],
			Processing: counts[store.QueueStatusProcessing],
			Completed:  counts[store.QueueStatusCompleted],
			Failed:     counts[store.QueueStatusFailed],
		})
	}

	if opts.Format == "json" {
		return formatter.Success(statuses)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-18s %8s %10s %10s %7s\n", "QUEUE", "PENDING", "PROCESSING", "COMPLETED", "FAILED")
	for _, s := range statuses {
		fmt.Fprintf(&b, "%-18s %8d %10d %10d %7d\n", s.Queue, s.Pending, s.Processing, s.Completed, s.Failed)
	}
	return formatter.Success(strings.TrimRight(b.String(), "\n"))
}
