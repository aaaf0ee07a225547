package agent

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
)

// LocalEmbedder produces bag-of-words vectors by hashing tokens into a
// fixed number of buckets. Deterministic and offline: the same text always
// embeds the same way, and texts sharing vocabulary land near each other.
// It stands in wherever a hosted embedding model would go.
type LocalEmbedder struct {
	dims int
}

func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{dims: 64}
}

func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.dims)]++
	}

	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	if mag > 0 {
		norm := float32(math.Sqrt(mag))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// KeywordDetector flags summaries that talk about a problem without naming
// it as a challenge. A crude heuristic stand-in for a language model.
type KeywordDetector struct{}

var problemWords = []string{
	"problem", "struggle", "struggling", "blocker", "blocked", "pain",
	"churn", "losing", "failing", "broken", "slow", "frustrat", "risk",
}

func (KeywordDetector) Detect(ctx context.Context, summary string) (string, bool, error) {
	lower := strings.ToLower(summary)
	for _, w := range problemWords {
		if strings.Contains(lower, w) {
			return "the summary hints at friction around " + strconv.Quote(w), true, nil
		}
	}
	return "", false, nil
}
