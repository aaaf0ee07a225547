// Package id provides identifier generation behind an interface so tests
// can substitute deterministic sequences.
package id

import "github.com/google/uuid"

// Generator produces unique identifiers for new rows and queue items.
type Generator interface {
	NewID() string
}

// UUIDv7Generator produces UUIDv7 identifiers. UUIDv7 is time-ordered, so
// ids created later sort later, which keeps FIFO tie-breaks on id honest.
type UUIDv7Generator struct{}

func NewUUIDv7Generator() *UUIDv7Generator {
	return &UUIDv7Generator{}
}

// NewID generates a new UUIDv7 string.
// Panics only if the system entropy source fails.
func (g *UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
