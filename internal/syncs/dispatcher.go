package syncs

import (
	"log/slog"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/registry"
)

// Dispatcher wires a registry onto a bus. Wiring is fail-fast: a registry
// naming any handler this build does not implement refuses to wire at all.
type Dispatcher struct {
	handlers *Handlers
	logger   *slog.Logger
}

func NewDispatcher(h *Handlers, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{handlers: h, logger: logger}
}

// Wire validates reg against the handler table and subscribes every entry.
// All unknown handler ids are reported in one ConfigurationError. Wiring
// the same registry twice is a no-op; the bus ignores duplicate
// subscriptions.
func (d *Dispatcher) Wire(reg *registry.Registry, bus *event.Bus) error {
	table := d.handlers.Table()
	known := func(hid registry.HandlerID) bool {
		_, ok := table[hid]
		return ok
	}
	if err := reg.Validate(known); err != nil {
		return err
	}

	for _, entry := range reg.Entries() {
		for _, hid := range entry.Handlers {
			bus.Subscribe(entry.Event, string(hid), table[hid])
		}
	}
	d.logger.Debug("registry wired", "events", len(reg.Entries()))
	return nil
}
