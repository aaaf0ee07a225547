// Package testutil provides deterministic fakes for tests: sequential ids,
// an event recorder, and scripted embedding and similarity ports.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator returns ids "<prefix>-1", "<prefix>-2", ... in order.
//
// This enables deterministic test execution and golden snapshot comparison:
// the same scenario with the same SequenceGenerator produces byte-identical
// event traces.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix defaults to
// "id".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{prefix: prefix}
}

// NewID returns the next id in the sequence.
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Count returns how many ids have been issued.
func (g *SequenceGenerator) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
