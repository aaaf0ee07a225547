package syncs

import (
	"context"
	"fmt"

	"github.com/justingibbs/crabgrass/internal/agent"
	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/store"
)

// enqueueConnection queues a similarity scan for the content that changed.
// The payload names the embedding space and the record to scan; when the
// event only identifies the idea, the scan targets its summary.
func (h *Handlers) enqueueConnection(ctx context.Context, p event.Payload) error {
	ideaID := str(p, "idea_id")
	kind, targetID := connectionTarget(p)
	if targetID == "" {
		sum, err := h.store.GetSummaryByIdea(ctx, ideaID)
		if err != nil {
			return fmt.Errorf("enqueue connection for idea %s: %w", ideaID, err)
		}
		kind, targetID = string(agent.KindSummary), sum.ID
	}
	_, err := h.queues.Enqueue(ctx, queue.Connection, map[string]any{
		"kind":    kind,
		"id":      targetID,
		"idea_id": ideaID,
	})
	return err
}

func connectionTarget(p event.Payload) (kind, id string) {
	fields := p.Fields()
	if v, ok := fields["challenge_id"].(string); ok {
		return string(agent.KindChallenge), v
	}
	if v, ok := fields["approach_id"].(string); ok {
		return string(agent.KindApproach), v
	}
	if v, ok := fields["summary_id"].(string); ok {
		return string(agent.KindSummary), v
	}
	return "", ""
}

// enqueueNurture queues a nurture pass unconditionally.
func (h *Handlers) enqueueNurture(ctx context.Context, p event.Payload) error {
	_, err := h.queues.Enqueue(ctx, queue.Nurture, map[string]any{"idea_id": str(p, "idea_id")})
	return err
}

// enqueueNurtureIfSummaryOnly queues a nurture pass unless the idea already
// has structure. Fired on creation, when a challenge or approach cannot
// exist yet in the common path, but a registry override may route other
// events here.
func (h *Handlers) enqueueNurtureIfSummaryOnly(ctx context.Context, p event.Payload) error {
	ideaID := str(p, "idea_id")
	structured, err := h.store.HasStructure(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("nurture check for idea %s: %w", ideaID, err)
	}
	if structured {
		return nil
	}
	_, err = h.queues.Enqueue(ctx, queue.Nurture, map[string]any{"idea_id": ideaID})
	return err
}

// enqueueNurtureCheck re-evaluates an idea after an edit: archived or
// structured ideas are left alone, the rest go back on the nurture queue.
func (h *Handlers) enqueueNurtureCheck(ctx context.Context, p event.Payload) error {
	ideaID := str(p, "idea_id")
	idea, err := h.store.GetIdea(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("nurture check for idea %s: %w", ideaID, err)
	}
	if idea.Status == store.IdeaStatusArchived {
		return nil
	}
	structured, err := h.store.HasStructure(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("nurture check for idea %s: %w", ideaID, err)
	}
	if structured {
		return nil
	}
	_, err = h.queues.Enqueue(ctx, queue.Nurture, map[string]any{"idea_id": ideaID})
	return err
}

func (h *Handlers) removeFromConnectionQueue(ctx context.Context, p event.Payload) error {
	return h.removePending(ctx, queue.Connection, str(p, "idea_id"))
}

func (h *Handlers) removeFromNurtureQueue(ctx context.Context, p event.Payload) error {
	return h.removePending(ctx, queue.Nurture, str(p, "idea_id"))
}

func (h *Handlers) removePending(ctx context.Context, name queue.Name, ideaID string) error {
	removed, err := h.queues.RemoveByPayloadMatch(ctx, name, "idea_id", ideaID)
	if err != nil {
		return err
	}
	if removed > 0 {
		h.logger.Debug("dropped pending queue items", "queue", name, "idea_id", ideaID, "removed", removed)
	}
	return nil
}

// enqueueObjectiveReview fans out one review item per idea linked to the
// retired objective, so each orphan candidate is judged independently.
func (h *Handlers) enqueueObjectiveReview(ctx context.Context, p event.Payload) error {
	objectiveID := str(p, "objective_id")
	ideaIDs, err := h.store.IdeasForObjective(ctx, objectiveID)
	if err != nil {
		return fmt.Errorf("objective review fan-out for %s: %w", objectiveID, err)
	}
	for _, ideaID := range ideaIDs {
		_, err := h.queues.Enqueue(ctx, queue.ObjectiveReview, map[string]any{
			"idea_id":              ideaID,
			"retired_objective_id": objectiveID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
