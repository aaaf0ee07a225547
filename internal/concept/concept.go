// Package concept implements the action layer. Each concept owns its state
// exclusively; an action validates, mutates storage, and publishes exactly
// one event per mutated concept after the write commits. Failed actions
// publish nothing. Concepts never call each other - cross-concept effects
// happen through handlers wired by the registry.
package concept

import (
	"context"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/id"
	"github.com/justingibbs/crabgrass/internal/store"
)

// deps is what every concept needs: storage, the bus, and an id source.
type deps struct {
	store *store.Store
	bus   *event.Bus
	ids   id.Generator
}

func (d deps) publish(ctx context.Context, p event.Payload) {
	// Handler failures are logged by the bus; the action already succeeded.
	d.bus.Publish(ctx, p)
}

// Set bundles every concept's actions over one store and bus.
type Set struct {
	Ideas         *Ideas
	Summaries     *Summaries
	Challenges    *Challenges
	Approaches    *Approaches
	Actions       *Actions
	Objectives    *Objectives
	Links         *Links
	Notifications *Notifications
	Sessions      *Sessions
	Users         *Users
}

// NewSet wires the concept actions. gen defaults to UUIDv7 when nil.
func NewSet(st *store.Store, bus *event.Bus, gen id.Generator) *Set {
	if gen == nil {
		gen = id.NewUUIDv7Generator()
	}
	d := deps{store: st, bus: bus, ids: gen}
	return &Set{
		Ideas:         &Ideas{d},
		Summaries:     &Summaries{d},
		Challenges:    &Challenges{d},
		Approaches:    &Approaches{d},
		Actions:       &Actions{d},
		Objectives:    &Objectives{d},
		Links:         &Links{d},
		Notifications: &Notifications{d},
		Sessions:      &Sessions{d},
		Users:         &Users{d},
	}
}

func requireNonEmpty(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}
