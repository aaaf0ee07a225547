package agent

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/justingibbs/crabgrass/internal/store"
)

// StoreIndex answers similarity queries by brute-force cosine scoring over
// the embeddings in the store. Fine for the corpus sizes an organization
// produces; swap the SimilarityIndex port for a vector store if that ever
// changes.
type StoreIndex struct {
	store *store.Store
}

func NewStoreIndex(st *store.Store) *StoreIndex {
	return &StoreIndex{store: st}
}

func (x *StoreIndex) Query(ctx context.Context, kind Kind, vector []float32, excludeID string, threshold float64, limit int) ([]Match, error) {
	records, err := x.records(ctx, kind)
	if err != nil {
		return nil, err
	}

	var out []Match
	for _, rec := range records {
		if rec.ID == excludeID {
			continue
		}
		score := cosine(vector, rec.Embedding)
		if score < threshold {
			continue
		}
		out = append(out, Match{ID: rec.ID, IdeaID: rec.IdeaID, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (x *StoreIndex) records(ctx context.Context, kind Kind) ([]store.EmbeddedRecord, error) {
	switch kind {
	case KindSummary:
		return x.store.ListSummaryEmbeddings(ctx)
	case KindChallenge:
		return x.store.ListChallengeEmbeddings(ctx)
	case KindApproach:
		return x.store.ListApproachEmbeddings(ctx)
	case KindObjective:
		return x.store.ListObjectiveEmbeddings(ctx)
	default:
		return nil, fmt.Errorf("unknown embedding kind %q", kind)
	}
}

// cosine returns the cosine similarity of two vectors, 0 when either is
// empty or zero-length in magnitude. Mismatched dimensions score over the
// shared prefix.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
