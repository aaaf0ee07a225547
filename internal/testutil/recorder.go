package testutil

import (
	"context"
	"sync"

	"github.com/justingibbs/crabgrass/internal/event"
)

// EventRecorder taps a bus and keeps every published payload in order.
// Subscribe it before the handlers under test so the trace includes events
// their work produces.
type EventRecorder struct {
	mu     sync.Mutex
	events []event.Payload
}

// NewEventRecorder creates a recorder subscribed to every event name on
// bus.
func NewEventRecorder(bus *event.Bus) *EventRecorder {
	r := &EventRecorder{}
	for _, name := range event.AllNames() {
		bus.Subscribe(name, "testutil_recorder", r.record)
	}
	return r
}

func (r *EventRecorder) record(ctx context.Context, p event.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
	return nil
}

// Events returns the recorded payloads in publication order.
func (r *EventRecorder) Events() []event.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Payload, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the recorded event names in publication order.
func (r *EventRecorder) Names() []event.Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]event.Name, len(r.events))
	for i, p := range r.events {
		names[i] = p.EventName()
	}
	return names
}

// Count returns how many events with name were recorded.
func (r *EventRecorder) Count(name event.Name) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, p := range r.events {
		if p.EventName() == name {
			count++
		}
	}
	return count
}

// Reset clears the trace.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
