package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/store"
)

// NurtureAgent looks at unstructured ideas and queues gentle prompts toward
// structure: a challenge the summary hints at, a structured idea that looks
// similar, or an objective worth linking to. Each check is independent; one
// failing never suppresses the others' prompts.
type NurtureAgent struct {
	store    *store.Store
	queues   *queue.Queues
	embedder EmbeddingProvider
	index    SimilarityIndex
	detector ChallengeDetector
	logger   *slog.Logger
}

func NewNurtureAgent(st *store.Store, q *queue.Queues, embedder EmbeddingProvider, index SimilarityIndex, detector ChallengeDetector, logger *slog.Logger) *NurtureAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &NurtureAgent{store: st, queues: q, embedder: embedder, index: index, detector: detector, logger: logger}
}

func (a *NurtureAgent) Name() string      { return "nurture" }
func (a *NurtureAgent) Queue() queue.Name { return queue.Nurture }

// Process expects `{idea_id}`. Ideas that were archived, structured, linked
// to an active objective, or deleted since enqueue complete without output.
func (a *NurtureAgent) Process(ctx context.Context, item *queue.Item) error {
	ideaID := stringField(item, "idea_id")

	idea, err := a.store.GetIdea(ctx, ideaID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load idea %s: %w", ideaID, err)
	}
	if idea.Status == store.IdeaStatusArchived {
		return nil
	}
	structured, err := a.store.HasStructure(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("structure check for idea %s: %w", ideaID, err)
	}
	if structured {
		return nil
	}
	linked, err := a.store.HasActiveObjectiveLink(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("link check for idea %s: %w", ideaID, err)
	}
	if linked {
		return nil
	}

	summary, err := a.store.GetSummaryByIdea(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("load summary of idea %s: %w", ideaID, err)
	}

	// Check failures are logged rather than returned: retrying the item
	// would re-run the checks that already queued their prompt and
	// duplicate it.
	a.checkChallengeHint(ctx, ideaID, summary)
	a.checkSimilarStructured(ctx, ideaID, summary)
	a.checkObjectiveFit(ctx, ideaID, summary)
	return nil
}

func (a *NurtureAgent) checkChallengeHint(ctx context.Context, ideaID string, summary *store.Summary) {
	hint, ok, err := a.detector.Detect(ctx, summary.Content)
	if err != nil {
		a.logger.Error("challenge detection", "idea_id", ideaID, "error", err)
		return
	}
	if !ok {
		return
	}
	a.enqueuePrompt(ctx, ideaID, map[string]any{
		"type":        SurfacingNurtureChallengeHint,
		"source_type": "idea",
		"source_id":   ideaID,
		"idea_id":     ideaID,
		"hint":        hint,
	})
}

func (a *NurtureAgent) checkSimilarStructured(ctx context.Context, ideaID string, summary *store.Summary) {
	vector, err := a.summaryVector(ctx, summary)
	if err != nil {
		a.logger.Error("summary embedding", "idea_id", ideaID, "error", err)
		return
	}
	matches, err := a.index.Query(ctx, KindSummary, vector, summary.ID, SimilarityThresholdIdea, MaxSimilarResults)
	if err != nil {
		a.logger.Error("similar idea lookup", "idea_id", ideaID, "error", err)
		return
	}
	for _, m := range matches {
		if m.IdeaID == ideaID {
			continue
		}
		structured, err := a.store.HasStructure(ctx, m.IdeaID)
		if err != nil {
			a.logger.Error("similar idea lookup", "idea_id", ideaID, "error", err)
			return
		}
		if !structured {
			continue
		}
		// One prompt per pass: the best structured neighbour.
		a.enqueuePrompt(ctx, ideaID, map[string]any{
			"type":            SurfacingNurtureSimilarFound,
			"source_type":     "idea",
			"source_id":       ideaID,
			"idea_id":         ideaID,
			"similar_idea_id": m.IdeaID,
			"score":           m.Score,
		})
		return
	}
}

func (a *NurtureAgent) checkObjectiveFit(ctx context.Context, ideaID string, summary *store.Summary) {
	vector, err := a.summaryVector(ctx, summary)
	if err != nil {
		a.logger.Error("summary embedding", "idea_id", ideaID, "error", err)
		return
	}
	matches, err := a.index.Query(ctx, KindObjective, vector, "", ReconnectionThreshold, 1)
	if err != nil {
		a.logger.Error("objective fit", "idea_id", ideaID, "error", err)
		return
	}
	if len(matches) == 0 {
		return
	}
	a.enqueuePrompt(ctx, ideaID, map[string]any{
		"type":         SurfacingNurtureObjectiveSuggestion,
		"source_type":  "idea",
		"source_id":    ideaID,
		"idea_id":      ideaID,
		"objective_id": matches[0].ID,
		"score":        matches[0].Score,
	})
}

func (a *NurtureAgent) summaryVector(ctx context.Context, summary *store.Summary) ([]float32, error) {
	if len(summary.Embedding) > 0 {
		return summary.Embedding, nil
	}
	return a.embedder.Embed(ctx, summary.Content)
}

func (a *NurtureAgent) enqueuePrompt(ctx context.Context, ideaID string, payload map[string]any) {
	if _, err := a.queues.Enqueue(ctx, queue.Surfacing, payload); err != nil {
		a.logger.Error("enqueue nurture prompt", "idea_id", ideaID, "type", payload["type"], "error", err)
	}
}
