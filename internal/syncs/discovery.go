package syncs

import (
	"context"
	"fmt"
	"time"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/store"
)

// Relationship kinds recorded from agent discoveries.
const (
	RelationshipSimilarTo         = "similar_to"
	RelationshipMayBeInterestedIn = "may_be_interested_in"
)

// Notification types produced by handlers.
const (
	NotificationReconnection = "reconnection_suggestion"
	NotificationOrphan       = "orphaned_idea"
)

// createSimilarityRelationship persists a similarity finding. Re-discovery
// of the same pair updates the score in place; the store's endpoint
// constraint keeps the row unique.
func (h *Handlers) createSimilarityRelationship(ctx context.Context, p event.Payload) error {
	r := store.Relationship{
		ID:           h.ids.NewID(),
		FromType:     str(p, "from_type"),
		FromID:       str(p, "from_id"),
		ToType:       str(p, "to_type"),
		ToID:         str(p, "to_id"),
		Relationship: RelationshipSimilarTo,
		Score:        num(p, "score"),
		DiscoveredAt: time.Now().UTC(),
		DiscoveredBy: "connection_agent",
	}
	inserted, err := h.store.UpsertRelationship(ctx, r)
	if err != nil {
		return fmt.Errorf("record similarity %s/%s -> %s/%s: %w", r.FromType, r.FromID, r.ToType, r.ToID, err)
	}
	h.logger.Debug("similarity recorded",
		"from", r.FromID, "to", r.ToID, "score", r.Score, "inserted", inserted)
	return nil
}

// createInterestRelationship records a user-to-idea interest edge from a
// relevant-user finding.
func (h *Handlers) createInterestRelationship(ctx context.Context, p event.Payload) error {
	r := store.Relationship{
		ID:           h.ids.NewID(),
		FromType:     "user",
		FromID:       str(p, "user_id"),
		ToType:       "idea",
		ToID:         str(p, "idea_id"),
		Relationship: RelationshipMayBeInterestedIn,
		Score:        num(p, "score"),
		DiscoveredAt: time.Now().UTC(),
		DiscoveredBy: "connection_agent",
	}
	inserted, err := h.store.UpsertRelationship(ctx, r)
	if err != nil {
		return fmt.Errorf("record interest user/%s -> idea/%s: %w", r.FromID, r.ToID, err)
	}
	h.logger.Debug("interest recorded",
		"user", r.FromID, "idea", r.ToID, "score", r.Score, "inserted", inserted)
	return nil
}

// createReconnectionNotification tells every contributor of an orphaned
// idea that an active objective looks like a fit.
func (h *Handlers) createReconnectionNotification(ctx context.Context, p event.Payload) error {
	ideaID := str(p, "idea_id")
	objectiveID := str(p, "objective_id")
	obj, err := h.store.GetObjective(ctx, objectiveID)
	if err != nil {
		return fmt.Errorf("reconnection notification for idea %s: %w", ideaID, err)
	}
	message := fmt.Sprintf("This idea may fit the objective %q (similarity %.2f)", obj.Title, num(p, "score"))
	return h.notifyContributors(ctx, ideaID, store.Notification{
		Type:       NotificationReconnection,
		Message:    message,
		SourceType: "objective",
		SourceID:   objectiveID,
		RelatedID:  ideaID,
	})
}

// createOrphanNotification tells every contributor their idea lost its last
// objective link and no replacement scored high enough.
func (h *Handlers) createOrphanNotification(ctx context.Context, p event.Payload) error {
	ideaID := str(p, "idea_id")
	idea, err := h.store.GetIdea(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("orphan notification for idea %s: %w", ideaID, err)
	}
	message := fmt.Sprintf("The idea %q is no longer linked to any objective", idea.Title)
	return h.notifyContributors(ctx, ideaID, store.Notification{
		Type:       NotificationOrphan,
		Message:    message,
		SourceType: "idea",
		SourceID:   ideaID,
	})
}

func (h *Handlers) notifyContributors(ctx context.Context, ideaID string, template store.Notification) error {
	contributors, err := h.store.Contributors(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("contributors of idea %s: %w", ideaID, err)
	}
	for _, userID := range contributors {
		n := template
		n.ID = h.ids.NewID()
		n.UserID = userID
		if err := h.store.CreateNotification(ctx, n); err != nil {
			return fmt.Errorf("notify %s about idea %s: %w", userID, ideaID, err)
		}
	}
	return nil
}
