package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/store"
)

// ConnectionAgent scans changed content against its embedding space and
// publishes agent.found_similarity for every hit. It never writes
// relationships or notifications itself; the wired handlers do.
type ConnectionAgent struct {
	store    *store.Store
	bus      *event.Bus
	embedder EmbeddingProvider
	index    SimilarityIndex
	logger   *slog.Logger
}

func NewConnectionAgent(st *store.Store, bus *event.Bus, embedder EmbeddingProvider, index SimilarityIndex, logger *slog.Logger) *ConnectionAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConnectionAgent{store: st, bus: bus, embedder: embedder, index: index, logger: logger}
}

func (a *ConnectionAgent) Name() string      { return "connection" }
func (a *ConnectionAgent) Queue() queue.Name { return queue.Connection }

// Process expects `{kind, id, idea_id}`. Structure matches use the stricter
// threshold; summary matches the looser idea threshold. Matches within the
// same idea are noise and skipped.
func (a *ConnectionAgent) Process(ctx context.Context, item *queue.Item) error {
	kind := Kind(stringField(item, "kind"))
	targetID := stringField(item, "id")
	ideaID := stringField(item, "idea_id")

	vector, err := a.vectorFor(ctx, kind, targetID)
	if err != nil {
		return err
	}

	threshold := SimilarityThresholdStructure
	if kind == KindSummary {
		threshold = SimilarityThresholdIdea
	}

	matches, err := a.index.Query(ctx, kind, vector, targetID, threshold, MaxSimilarResults)
	if err != nil {
		return fmt.Errorf("similarity query for %s %s: %w", kind, targetID, err)
	}

	for _, m := range matches {
		if m.IdeaID == ideaID {
			continue
		}
		a.bus.Publish(ctx, event.AgentFoundSimilarityPayload{
			FromType:    string(kind),
			FromID:      targetID,
			ToType:      string(kind),
			ToID:        m.ID,
			IdeaID:      ideaID,
			OtherIdeaID: m.IdeaID,
			Score:       m.Score,
		})
	}
	return nil
}

// vectorFor returns the stored embedding for the record, embedding its
// content on the spot when the generate handler has not caught up yet.
func (a *ConnectionAgent) vectorFor(ctx context.Context, kind Kind, id string) ([]float32, error) {
	var embedding []float32
	var content string

	switch kind {
	case KindSummary:
		sum, err := a.store.GetSummary(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load summary %s: %w", id, err)
		}
		embedding, content = sum.Embedding, sum.Content
	case KindChallenge:
		ch, err := a.store.GetChallenge(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load challenge %s: %w", id, err)
		}
		embedding, content = ch.Embedding, ch.Content
	case KindApproach:
		ap, err := a.store.GetApproach(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load approach %s: %w", id, err)
		}
		embedding, content = ap.Embedding, ap.Content
	default:
		return nil, fmt.Errorf("unsupported scan kind %q", kind)
	}

	if len(embedding) > 0 {
		return embedding, nil
	}
	vec, err := a.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embed %s %s: %w", kind, id, err)
	}
	return vec, nil
}

func stringField(item *queue.Item, key string) string {
	v, _ := item.Payload[key].(string)
	return v
}

func floatField(item *queue.Item, key string) float64 {
	v, _ := item.Payload[key].(float64)
	return v
}
