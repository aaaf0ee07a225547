package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/justingibbs/crabgrass/internal/concept"
	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/store"
)

// SurfacingAgent turns queued surfacing payloads into notifications. It is
// the only agent that decides who hears about what: watchers for objective
// activity, contributors for idea activity, the named user for interest
// matches.
type SurfacingAgent struct {
	store         *store.Store
	notifications *concept.Notifications
	logger        *slog.Logger
}

func NewSurfacingAgent(st *store.Store, notifications *concept.Notifications, logger *slog.Logger) *SurfacingAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &SurfacingAgent{store: st, notifications: notifications, logger: logger}
}

func (a *SurfacingAgent) Name() string      { return "surfacing" }
func (a *SurfacingAgent) Queue() queue.Name { return queue.Surfacing }

// Process expects `{type, source_type, source_id, ...}`. Recipients are
// de-duplicated per (user, source, type), so overlapping contributor sets
// produce one notification each.
func (a *SurfacingAgent) Process(ctx context.Context, item *queue.Item) error {
	typ := stringField(item, "type")

	recipients, err := a.recipients(ctx, typ, item)
	if err != nil {
		return err
	}
	message, err := a.message(ctx, typ, item)
	if err != nil {
		return err
	}

	sourceType := stringField(item, "source_type")
	sourceID := stringField(item, "source_id")
	relatedID := relatedField(typ, item)

	seen := make(map[string]bool, len(recipients))
	for _, userID := range recipients {
		if userID == "" || seen[userID] {
			continue
		}
		seen[userID] = true
		if _, err := a.notifications.Create(ctx, userID, typ, message, sourceType, sourceID, relatedID); err != nil {
			return fmt.Errorf("notify %s: %w", userID, err)
		}
	}
	return nil
}

func (a *SurfacingAgent) recipients(ctx context.Context, typ string, item *queue.Item) ([]string, error) {
	switch typ {
	case SurfacingIdeaLinked, SurfacingObjectiveCreated, SurfacingObjectiveUpdated, SurfacingObjectiveRetired:
		return a.store.Watchers(ctx, store.WatchTargetObjective, stringField(item, "objective_id"))

	case SurfacingIdeaArchived, SurfacingSharedContent, SurfacingActionCompleted,
		SurfacingNurtureChallengeHint, SurfacingNurtureSimilarFound, SurfacingNurtureObjectiveSuggestion:
		return a.store.Contributors(ctx, stringField(item, "idea_id"))

	case SurfacingSimilarity:
		first, err := a.store.Contributors(ctx, stringField(item, "idea_id"))
		if err != nil {
			return nil, err
		}
		second, err := a.store.Contributors(ctx, stringField(item, "other_idea_id"))
		if err != nil {
			return nil, err
		}
		return append(first, second...), nil

	case SurfacingUserInterest:
		return []string{stringField(item, "user_id")}, nil

	default:
		return nil, fmt.Errorf("unknown surfacing type %q", typ)
	}
}

func (a *SurfacingAgent) message(ctx context.Context, typ string, item *queue.Item) (string, error) {
	switch typ {
	case SurfacingIdeaArchived:
		return fmt.Sprintf("The idea %q was archived", a.ideaTitle(ctx, stringField(item, "idea_id"))), nil
	case SurfacingIdeaLinked:
		return fmt.Sprintf("The idea %q was linked to an objective you watch", a.ideaTitle(ctx, stringField(item, "idea_id"))), nil
	case SurfacingSharedContent:
		return fmt.Sprintf("A %s on the idea %q was revised", stringField(item, "source_type"), a.ideaTitle(ctx, stringField(item, "idea_id"))), nil
	case SurfacingActionCompleted:
		return fmt.Sprintf("An action on the idea %q was completed", a.ideaTitle(ctx, stringField(item, "idea_id"))), nil
	case SurfacingObjectiveCreated:
		return "An objective you watch was created", nil
	case SurfacingObjectiveUpdated:
		return "An objective you watch was updated", nil
	case SurfacingObjectiveRetired:
		return "An objective you watch was retired", nil
	case SurfacingSimilarity:
		return fmt.Sprintf("The idea %q looks similar to another idea (score %.2f)",
			a.ideaTitle(ctx, stringField(item, "idea_id")), floatField(item, "score")), nil
	case SurfacingUserInterest:
		return fmt.Sprintf("The idea %q may interest you (score %.2f)",
			a.ideaTitle(ctx, stringField(item, "idea_id")), floatField(item, "score")), nil
	case SurfacingNurtureChallengeHint:
		return fmt.Sprintf("Your idea %q may be tackling a challenge worth writing down: %s",
			a.ideaTitle(ctx, stringField(item, "idea_id")), stringField(item, "hint")), nil
	case SurfacingNurtureSimilarFound:
		return fmt.Sprintf("Another idea similar to %q already has structure; it may help shape yours",
			a.ideaTitle(ctx, stringField(item, "idea_id"))), nil
	case SurfacingNurtureObjectiveSuggestion:
		return fmt.Sprintf("Your idea %q may fit an active objective (score %.2f)",
			a.ideaTitle(ctx, stringField(item, "idea_id")), floatField(item, "score")), nil
	default:
		return "", fmt.Errorf("unknown surfacing type %q", typ)
	}
}

// ideaTitle is best-effort flavoring; a missing idea falls back to its id.
func (a *SurfacingAgent) ideaTitle(ctx context.Context, ideaID string) string {
	idea, err := a.store.GetIdea(ctx, ideaID)
	if err != nil {
		return ideaID
	}
	return idea.Title
}

func relatedField(typ string, item *queue.Item) string {
	switch typ {
	case SurfacingSimilarity:
		return stringField(item, "other_idea_id")
	case SurfacingNurtureSimilarFound:
		return stringField(item, "similar_idea_id")
	case SurfacingIdeaLinked, SurfacingNurtureObjectiveSuggestion:
		return stringField(item, "objective_id")
	default:
		return ""
	}
}
