package testutil

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/justingibbs/crabgrass/internal/agent"
)

// FakeEmbedder derives a small deterministic vector from the text itself,
// so equal text always embeds identically and different text (almost)
// never does. No external model involved.
type FakeEmbedder struct {
	mu    sync.Mutex
	calls []string
}

func NewFakeEmbedder() *FakeEmbedder {
	return &FakeEmbedder{}
}

func (e *FakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls = append(e.calls, text)
	e.mu.Unlock()

	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, 8)
	for i := range vec {
		vec[i] = float32(sum[i]) / 255
	}
	return vec, nil
}

// Calls returns the texts embedded so far, in order.
func (e *FakeEmbedder) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// ScriptedIndex answers similarity queries from a fixed script keyed by
// kind and excludeID. Unscripted queries return no matches. Threshold and
// limit are applied to the scripted matches the same way a real index
// would, so tests exercise the cutoff logic.
type ScriptedIndex struct {
	mu      sync.Mutex
	matches map[scriptKey][]agent.Match
}

type scriptKey struct {
	kind      agent.Kind
	excludeID string
}

func NewScriptedIndex() *ScriptedIndex {
	return &ScriptedIndex{matches: make(map[scriptKey][]agent.Match)}
}

// Script registers the matches a query for (kind, excludeID) will return,
// before threshold and limit filtering.
func (s *ScriptedIndex) Script(kind agent.Kind, excludeID string, matches ...agent.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[scriptKey{kind: kind, excludeID: excludeID}] = matches
}

func (s *ScriptedIndex) Query(ctx context.Context, kind agent.Kind, vector []float32, excludeID string, threshold float64, limit int) ([]agent.Match, error) {
	s.mu.Lock()
	scripted := s.matches[scriptKey{kind: kind, excludeID: excludeID}]
	s.mu.Unlock()

	var out []agent.Match
	for _, m := range scripted {
		if m.Score < threshold {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// StaticDetector reports the same hint for every summary, or nothing when
// Hint is empty.
type StaticDetector struct {
	Hint string
}

func (d StaticDetector) Detect(ctx context.Context, summary string) (string, bool, error) {
	if d.Hint == "" {
		return "", false, nil
	}
	return d.Hint, true, nil
}
