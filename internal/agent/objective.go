package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/store"
)

// ObjectiveAgent reviews ideas stranded by a retired objective. Every
// processed orphan ends in exactly one verdict: a reconnection suggestion
// when an active objective scores high enough, or an orphan flag.
type ObjectiveAgent struct {
	store    *store.Store
	bus      *event.Bus
	embedder EmbeddingProvider
	index    SimilarityIndex
	logger   *slog.Logger
}

func NewObjectiveAgent(st *store.Store, bus *event.Bus, embedder EmbeddingProvider, index SimilarityIndex, logger *slog.Logger) *ObjectiveAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectiveAgent{store: st, bus: bus, embedder: embedder, index: index, logger: logger}
}

func (a *ObjectiveAgent) Name() string      { return "objective_review" }
func (a *ObjectiveAgent) Queue() queue.Name { return queue.ObjectiveReview }

// Process expects `{idea_id, retired_objective_id}`. Ideas that picked up
// another active link, or disappeared, are skipped without a verdict.
func (a *ObjectiveAgent) Process(ctx context.Context, item *queue.Item) error {
	ideaID := stringField(item, "idea_id")
	retiredID := stringField(item, "retired_objective_id")

	linked, err := a.store.HasActiveObjectiveLink(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("link check for idea %s: %w", ideaID, err)
	}
	if linked {
		return nil
	}

	summary, err := a.store.GetSummaryByIdea(ctx, ideaID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load summary of idea %s: %w", ideaID, err)
	}

	vector := summary.Embedding
	if len(vector) == 0 {
		if vector, err = a.embedder.Embed(ctx, summary.Content); err != nil {
			return fmt.Errorf("embed summary of idea %s: %w", ideaID, err)
		}
	}

	matches, err := a.index.Query(ctx, KindObjective, vector, retiredID, ReconnectionThreshold, 1)
	if err != nil {
		return fmt.Errorf("objective scan for idea %s: %w", ideaID, err)
	}

	if len(matches) > 0 {
		a.bus.Publish(ctx, event.AgentSuggestReconnectionPayload{
			IdeaID:      ideaID,
			ObjectiveID: matches[0].ID,
			Score:       matches[0].Score,
			Reason:      a.reconnectionReason(ctx, matches[0]),
		})
		return nil
	}
	a.bus.Publish(ctx, event.AgentFlagOrphanPayload{IdeaID: ideaID})
	return nil
}

// reconnectionReason names the matched objective; the title lookup is
// best-effort, falling back to the id.
func (a *ObjectiveAgent) reconnectionReason(ctx context.Context, m Match) string {
	name := m.ID
	if obj, err := a.store.GetObjective(ctx, m.ID); err == nil {
		name = obj.Title
	}
	return fmt.Sprintf("summary similarity %.2f to active objective %q", m.Score, name)
}
