package syncs

import (
	"context"

	"github.com/justingibbs/crabgrass/internal/agent"
	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/queue"
)

// The enqueue_surfacing_* handlers translate an event into one typed
// surfacing payload. Recipient resolution happens later in the surfacing
// agent; these handlers only record what happened and to what.

func (h *Handlers) enqueueSurfacing(ctx context.Context, payload map[string]any) error {
	_, err := h.queues.Enqueue(ctx, queue.Surfacing, payload)
	return err
}

func (h *Handlers) enqueueSurfacingIdeaArchived(ctx context.Context, p event.Payload) error {
	ideaID := str(p, "idea_id")
	return h.enqueueSurfacing(ctx, map[string]any{
		"type":        agent.SurfacingIdeaArchived,
		"source_type": "idea",
		"source_id":   ideaID,
		"idea_id":     ideaID,
	})
}

func (h *Handlers) enqueueSurfacingIdeaLinked(ctx context.Context, p event.Payload) error {
	ideaID := str(p, "idea_id")
	return h.enqueueSurfacing(ctx, map[string]any{
		"type":         agent.SurfacingIdeaLinked,
		"source_type":  "idea",
		"source_id":    ideaID,
		"idea_id":      ideaID,
		"objective_id": str(p, "objective_id"),
	})
}

func (h *Handlers) enqueueSurfacingSharedContent(ctx context.Context, p event.Payload) error {
	sourceType, sourceID := "challenge", str(p, "challenge_id")
	if sourceID == "" {
		sourceType, sourceID = "approach", str(p, "approach_id")
	}
	return h.enqueueSurfacing(ctx, map[string]any{
		"type":        agent.SurfacingSharedContent,
		"source_type": sourceType,
		"source_id":   sourceID,
		"idea_id":     str(p, "idea_id"),
	})
}

func (h *Handlers) enqueueSurfacingActionCompleted(ctx context.Context, p event.Payload) error {
	return h.enqueueSurfacing(ctx, map[string]any{
		"type":        agent.SurfacingActionCompleted,
		"source_type": "action",
		"source_id":   str(p, "action_id"),
		"idea_id":     str(p, "idea_id"),
	})
}

func (h *Handlers) enqueueSurfacingObjectiveCreated(ctx context.Context, p event.Payload) error {
	return h.enqueueSurfacingObjective(ctx, p, agent.SurfacingObjectiveCreated)
}

func (h *Handlers) enqueueSurfacingObjectiveUpdated(ctx context.Context, p event.Payload) error {
	return h.enqueueSurfacingObjective(ctx, p, agent.SurfacingObjectiveUpdated)
}

func (h *Handlers) enqueueSurfacingObjectiveRetired(ctx context.Context, p event.Payload) error {
	return h.enqueueSurfacingObjective(ctx, p, agent.SurfacingObjectiveRetired)
}

func (h *Handlers) enqueueSurfacingObjective(ctx context.Context, p event.Payload, typ string) error {
	objectiveID := str(p, "objective_id")
	return h.enqueueSurfacing(ctx, map[string]any{
		"type":         typ,
		"source_type":  "objective",
		"source_id":    objectiveID,
		"objective_id": objectiveID,
	})
}

func (h *Handlers) enqueueSurfacingSimilarity(ctx context.Context, p event.Payload) error {
	return h.enqueueSurfacing(ctx, map[string]any{
		"type":          agent.SurfacingSimilarity,
		"source_type":   str(p, "from_type"),
		"source_id":     str(p, "from_id"),
		"idea_id":       str(p, "idea_id"),
		"other_idea_id": str(p, "other_idea_id"),
		"score":         num(p, "score"),
	})
}

func (h *Handlers) enqueueSurfacingUserInterest(ctx context.Context, p event.Payload) error {
	ideaID := str(p, "idea_id")
	return h.enqueueSurfacing(ctx, map[string]any{
		"type":        agent.SurfacingUserInterest,
		"source_type": "idea",
		"source_id":   ideaID,
		"idea_id":     ideaID,
		"user_id":     str(p, "user_id"),
		"score":       num(p, "score"),
	})
}
