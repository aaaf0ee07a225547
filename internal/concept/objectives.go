package concept

import (
	"context"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/store"
)

// Objectives owns strategic objectives and their Active -> Retired
// lifecycle.
type Objectives struct {
	deps
}

// Create makes a new objective, optionally under a parent.
func (c *Objectives) Create(ctx context.Context, title, description, authorID, parentID string) (*store.Objective, error) {
	if err := requireNonEmpty("title", title); err != nil {
		return nil, err
	}
	if err := requireNonEmpty("description", description); err != nil {
		return nil, err
	}
	if err := requireNonEmpty("author_id", authorID); err != nil {
		return nil, err
	}
	if parentID != "" {
		if _, err := c.store.GetObjective(ctx, parentID); err != nil {
			return nil, wrapStore("create objective", "objective", parentID, err)
		}
	}

	o := store.Objective{
		ID:          c.ids.NewID(),
		Title:       title,
		Description: description,
		Status:      store.ObjectiveStatusActive,
		AuthorID:    authorID,
		ParentID:    parentID,
	}
	if err := c.store.CreateObjective(ctx, o); err != nil {
		return nil, &StorageError{Op: "create objective", Err: err}
	}

	c.publish(ctx, event.ObjectiveCreatedPayload{
		ObjectiveID: o.ID, Title: title, AuthorID: authorID, ParentID: parentID,
	})
	return &o, nil
}

// Get returns one objective.
func (c *Objectives) Get(ctx context.Context, objectiveID string) (*store.Objective, error) {
	o, err := c.store.GetObjective(ctx, objectiveID)
	if err != nil {
		return nil, wrapStore("get objective", "objective", objectiveID, err)
	}
	return o, nil
}

// Update changes title and/or description and publishes objective.updated.
func (c *Objectives) Update(ctx context.Context, objectiveID, title, description string) (*store.Objective, error) {
	if title == "" && description == "" {
		return nil, &ValidationError{Field: "changes", Reason: "nothing to update"}
	}

	if err := c.store.UpdateObjective(ctx, objectiveID, title, description); err != nil {
		return nil, wrapStore("update objective", "objective", objectiveID, err)
	}
	o, err := c.store.GetObjective(ctx, objectiveID)
	if err != nil {
		return nil, wrapStore("update objective", "objective", objectiveID, err)
	}

	changes := map[string]any{}
	if title != "" {
		changes["title"] = title
	}
	if description != "" {
		changes["description"] = description
	}
	c.publish(ctx, event.ObjectiveUpdatedPayload{ObjectiveID: objectiveID, Changes: changes})
	return o, nil
}

// Retire moves an Active objective to Retired and publishes
// objective.retired. Retiring a retired objective is a no-op and publishes
// nothing.
func (c *Objectives) Retire(ctx context.Context, objectiveID string) (*store.Objective, error) {
	transitioned, err := c.store.RetireObjective(ctx, objectiveID)
	if err != nil {
		return nil, wrapStore("retire objective", "objective", objectiveID, err)
	}
	o, err := c.store.GetObjective(ctx, objectiveID)
	if err != nil {
		return nil, wrapStore("retire objective", "objective", objectiveID, err)
	}

	if transitioned {
		c.publish(ctx, event.ObjectiveRetiredPayload{ObjectiveID: objectiveID})
	}
	return o, nil
}

// Links owns the idea-objective association.
type Links struct {
	deps
}

// Link associates an idea with an objective. Linking twice is a no-op;
// idea.linked_to_objective fires only when a new link is recorded.
func (c *Links) Link(ctx context.Context, ideaID, objectiveID string) error {
	if _, err := c.store.GetIdea(ctx, ideaID); err != nil {
		return wrapStore("link", "idea", ideaID, err)
	}
	if _, err := c.store.GetObjective(ctx, objectiveID); err != nil {
		return wrapStore("link", "objective", objectiveID, err)
	}

	inserted, err := c.store.LinkIdeaObjective(ctx, ideaID, objectiveID)
	if err != nil {
		return &StorageError{Op: "link", Err: err}
	}
	if inserted {
		c.publish(ctx, event.IdeaLinkedToObjectivePayload{IdeaID: ideaID, ObjectiveID: objectiveID})
	}
	return nil
}

// Unlink removes the association; idea.unlinked_from_objective fires only
// when a link actually existed.
func (c *Links) Unlink(ctx context.Context, ideaID, objectiveID string) error {
	removed, err := c.store.UnlinkIdeaObjective(ctx, ideaID, objectiveID)
	if err != nil {
		return &StorageError{Op: "unlink", Err: err}
	}
	if removed {
		c.publish(ctx, event.IdeaUnlinkedFromObjectivePayload{IdeaID: ideaID, ObjectiveID: objectiveID})
	}
	return nil
}
