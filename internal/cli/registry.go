package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justingibbs/crabgrass/internal/config"
	"github.com/justingibbs/crabgrass/internal/registry"
	"github.com/justingibbs/crabgrass/internal/syncs"
)

// RegistryEntry is one event's wiring in registry output.
type RegistryEntry struct {
	Event    string   `json:"event"`
	Handlers []string `json:"handlers"`
}

// NewRegistryCommand creates the registry command: print and validate the
// effective event-to-handler wiring.
func NewRegistryCommand(rootOpts *RootOptions) *cobra.Command {
	var overridePath string

	cmd := &cobra.Command{
		Use:           "registry",
		Short:         "Show and validate the effective handler registry",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistry(cmd, rootOpts, overridePath)
		},
	}
	cmd.Flags().StringVar(&overridePath, "registry", "", "CUE registry file overriding the default wiring")
	return cmd
}

func runRegistry(cmd *cobra.Command, opts *RootOptions, overridePath string) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitFailure, "load config", err)
	}
	if overridePath != "" {
		cfg.Registry = overridePath
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		formatter.Error("invalid registry", err.Error())
		return WrapExitError(ExitFailure, "invalid registry", err)
	}

	// Every named handler must exist in this build.
	table := syncs.NewHandlers(nil, nil, nil, nil, nil).Table()
	if err := reg.Validate(func(hid registry.HandlerID) bool {
		_, ok := table[hid]
		return ok
	}); err != nil {
		formatter.Error("unknown handlers", err.Error())
		return WrapExitError(ExitFailure, "unknown handlers", err)
	}

	entries := make([]RegistryEntry, 0, len(reg.Entries()))
	for _, e := range reg.Entries() {
		handlers := make([]string, len(e.Handlers))
		for i, h := range e.Handlers {
			handlers[i] = string(h)
		}
		entries = append(entries, RegistryEntry{Event: string(e.Event), Handlers: handlers})
	}

	if opts.Format == "json" {
		return formatter.Success(entries)
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%-30s -> %s\n", e.Event, strings.Join(e.Handlers, ", "))
	}
	fmt.Fprintf(&b, "%d events, all handlers resolved", len(entries))
	return formatter.Success(b.String())
}
