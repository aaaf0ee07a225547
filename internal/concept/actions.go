package concept

import (
	"context"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/store"
)

// Actions owns coherent actions: the concrete next steps attached to an
// idea. Completion is its own transition with its own event, distinct from
// a content update.
type Actions struct {
	deps
}

// Create adds a pending action to an idea.
func (c *Actions) Create(ctx context.Context, ideaID, content string) (*store.CoherentAction, error) {
	if err := requireNonEmpty("content", content); err != nil {
		return nil, err
	}
	if _, err := c.store.GetIdea(ctx, ideaID); err != nil {
		return nil, wrapStore("create action", "idea", ideaID, err)
	}

	a := store.CoherentAction{
		ID:      c.ids.NewID(),
		IdeaID:  ideaID,
		Content: content,
		Status:  store.ActionStatusPending,
	}
	if err := c.store.CreateAction(ctx, a); err != nil {
		return nil, &StorageError{Op: "create action", Err: err}
	}

	c.publish(ctx, event.ActionCreatedPayload{ActionID: a.ID, IdeaID: ideaID, Content: content})
	return &a, nil
}

// Get returns one action.
func (c *Actions) Get(ctx context.Context, actionID string) (*store.CoherentAction, error) {
	a, err := c.store.GetAction(ctx, actionID)
	if err != nil {
		return nil, wrapStore("get action", "action", actionID, err)
	}
	return a, nil
}

// Update changes content and/or moves between Pending and In Progress;
// completing goes through Complete. Publishes action.updated.
func (c *Actions) Update(ctx context.Context, actionID, content, status string) (*store.CoherentAction, error) {
	if content == "" && status == "" {
		return nil, &ValidationError{Field: "changes", Reason: "nothing to update"}
	}
	if status != "" && status != store.ActionStatusPending && status != store.ActionStatusInProgress {
		return nil, &ValidationError{Field: "status", Reason: "must be Pending or In Progress"}
	}

	a, err := c.store.GetAction(ctx, actionID)
	if err != nil {
		return nil, wrapStore("update action", "action", actionID, err)
	}
	if err := c.store.UpdateAction(ctx, actionID, content, status); err != nil {
		return nil, wrapStore("update action", "action", actionID, err)
	}

	changes := map[string]any{}
	if content != "" {
		a.Content = content
		changes["content"] = content
	}
	if status != "" {
		a.Status = status
		changes["status"] = status
	}
	c.publish(ctx, event.ActionUpdatedPayload{ActionID: actionID, IdeaID: a.IdeaID, Changes: changes})
	return a, nil
}

// Complete marks an action done and publishes action.completed. Completing
// an already complete action is a no-op and publishes nothing.
func (c *Actions) Complete(ctx context.Context, actionID string) (*store.CoherentAction, error) {
	a, err := c.store.GetAction(ctx, actionID)
	if err != nil {
		return nil, wrapStore("complete action", "action", actionID, err)
	}
	if a.Status == store.ActionStatusComplete {
		return a, nil
	}

	if err := c.store.UpdateAction(ctx, actionID, "", store.ActionStatusComplete); err != nil {
		return nil, wrapStore("complete action", "action", actionID, err)
	}
	a.Status = store.ActionStatusComplete

	c.publish(ctx, event.ActionCompletedPayload{ActionID: actionID, IdeaID: a.IdeaID})
	return a, nil
}
