package syncs

import (
	"context"
	"fmt"

	"github.com/justingibbs/crabgrass/internal/event"
)

// The generate_* handlers re-embed a record after its content changes. They
// load the current row rather than trusting the event's content snapshot,
// so a burst of edits converges on the latest text.

func (h *Handlers) generateSummaryEmbedding(ctx context.Context, p event.Payload) error {
	summaryID := str(p, "summary_id")
	sum, err := h.store.GetSummary(ctx, summaryID)
	if err != nil {
		return fmt.Errorf("embed summary %s: %w", summaryID, err)
	}
	vec, err := h.embedder.Embed(ctx, sum.Content)
	if err != nil {
		return fmt.Errorf("embed summary %s: %w", summaryID, err)
	}
	return h.store.SetSummaryEmbedding(ctx, summaryID, vec)
}

func (h *Handlers) generateChallengeEmbedding(ctx context.Context, p event.Payload) error {
	challengeID := str(p, "challenge_id")
	ch, err := h.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return fmt.Errorf("embed challenge %s: %w", challengeID, err)
	}
	vec, err := h.embedder.Embed(ctx, ch.Content)
	if err != nil {
		return fmt.Errorf("embed challenge %s: %w", challengeID, err)
	}
	return h.store.SetChallengeEmbedding(ctx, challengeID, vec)
}

func (h *Handlers) generateApproachEmbedding(ctx context.Context, p event.Payload) error {
	approachID := str(p, "approach_id")
	ap, err := h.store.GetApproach(ctx, approachID)
	if err != nil {
		return fmt.Errorf("embed approach %s: %w", approachID, err)
	}
	vec, err := h.embedder.Embed(ctx, ap.Content)
	if err != nil {
		return fmt.Errorf("embed approach %s: %w", approachID, err)
	}
	return h.store.SetApproachEmbedding(ctx, approachID, vec)
}

func (h *Handlers) generateObjectiveEmbedding(ctx context.Context, p event.Payload) error {
	objectiveID := str(p, "objective_id")
	obj, err := h.store.GetObjective(ctx, objectiveID)
	if err != nil {
		return fmt.Errorf("embed objective %s: %w", objectiveID, err)
	}
	vec, err := h.embedder.Embed(ctx, obj.Title+"\n"+obj.Description)
	if err != nil {
		return fmt.Errorf("embed objective %s: %w", objectiveID, err)
	}
	return h.store.SetObjectiveEmbedding(ctx, objectiveID, vec)
}
