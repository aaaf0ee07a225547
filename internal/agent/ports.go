// Package agent runs the background workers that process queued work:
// similarity detection, nurture prompts, notification surfacing, and
// objective retirement review. Agents drain their queues in FIFO order and
// publish findings as events; they never mutate concepts directly.
package agent

import "context"

// Kind selects which embedding space a similarity query runs against.
type Kind string

const (
	KindSummary   Kind = "summary"
	KindChallenge Kind = "challenge"
	KindApproach  Kind = "approach"
	KindObjective Kind = "objective"
)

// Match is one similarity hit. ID is the matched record in the queried
// space; IdeaID is the idea that record belongs to (equal to ID for
// objective queries).
type Match struct {
	ID     string
	IdeaID string
	Score  float64
}

// EmbeddingProvider turns text into a vector. Implementations call an
// external model; tests script it.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SimilarityIndex answers nearest-neighbour queries over stored embeddings.
// Results are ordered by descending score, exclude excludeID, and drop
// anything below threshold.
type SimilarityIndex interface {
	Query(ctx context.Context, kind Kind, vector []float32, excludeID string, threshold float64, limit int) ([]Match, error)
}

// ChallengeDetector inspects a summary for an implicit challenge the author
// has not yet written down. ok reports whether one was found.
type ChallengeDetector interface {
	Detect(ctx context.Context, summary string) (hint string, ok bool, err error)
}
