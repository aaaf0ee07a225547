package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type subscription struct {
	handlerID string
	fn        Handler
}

// Bus delivers published events synchronously to subscribed handlers, in
// subscription order. Publish returns only after every handler has run, so
// a caller observing a completed action also observes its side effects.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Name][]subscription
	logger *slog.Logger
}

// NewBus creates an empty bus. A nil logger falls back to slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[Name][]subscription),
		logger: logger,
	}
}

// Subscribe registers fn to run when name is published. Subscribing the
// same (name, handlerID) pair twice is a no-op, which makes dispatcher
// wiring idempotent.
func (b *Bus) Subscribe(name Name, handlerID string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subs[name] {
		if s.handlerID == handlerID {
			b.logger.Debug("duplicate subscription ignored",
				"event", string(name), "handler", handlerID)
			return
		}
	}
	b.subs[name] = append(b.subs[name], subscription{handlerID: handlerID, fn: fn})
}

// HandlerIDs returns the handler ids subscribed to name, in delivery order.
func (b *Bus) HandlerIDs(name Name) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, len(b.subs[name]))
	for i, s := range b.subs[name] {
		ids[i] = s.handlerID
	}
	return ids
}

// Publish delivers p to every handler subscribed to its event name. A
// handler failure or panic is wrapped as a HandlerError, logged, and does
// not prevent sibling handlers from running. The collected errors are
// returned for callers that want them; most publishers ignore the result.
func (b *Bus) Publish(ctx context.Context, p Payload) []error {
	name := p.EventName()

	b.mu.RLock()
	subs := make([]subscription, len(b.subs[name]))
	copy(subs, b.subs[name])
	b.mu.RUnlock()

	digest, derr := Digest(p)
	if derr != nil {
		digest = "?"
		b.logger.Warn("payload digest failed", "event", string(name), "error", derr)
	}
	b.logger.Debug("event published",
		"event", string(name), "digest", digest, "handlers", len(subs))

	var errs []error
	for _, s := range subs {
		if err := b.deliver(ctx, s, p); err != nil {
			he := &HandlerError{Event: name, HandlerID: s.handlerID, Err: err}
			b.logger.Error("handler failed",
				"event", string(name), "handler", s.handlerID,
				"digest", digest, "error", err)
			errs = append(errs, he)
		}
	}
	return errs
}

// deliver runs one handler, converting a panic into an error so a buggy
// handler cannot take down the publisher.
func (b *Bus) deliver(ctx context.Context, s subscription, p Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.fn(ctx, p)
}
