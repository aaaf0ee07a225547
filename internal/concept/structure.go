package concept

import (
	"context"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/store"
)

// Challenges owns an idea's challenge statements. Adding the first piece of
// structure to an idea also publishes idea.structure_added, which the wiring
// uses to withdraw the idea from the nurture lane.
type Challenges struct {
	deps
}

// Create adds a challenge to an idea.
func (c *Challenges) Create(ctx context.Context, ideaID, content string) (*store.Structure, error) {
	st, firstStructure, err := c.createStructure(ctx, ideaID, content, c.store.CreateChallenge)
	if err != nil {
		return nil, err
	}

	c.publish(ctx, event.ChallengeCreatedPayload{ChallengeID: st.ID, IdeaID: ideaID, Content: content})
	if firstStructure {
		c.publish(ctx, event.IdeaStructureAddedPayload{IdeaID: ideaID})
	}
	return st, nil
}

// Get returns one challenge.
func (c *Challenges) Get(ctx context.Context, challengeID string) (*store.Structure, error) {
	st, err := c.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, wrapStore("get challenge", "challenge", challengeID, err)
	}
	return st, nil
}

// Update replaces the content and publishes challenge.updated.
func (c *Challenges) Update(ctx context.Context, challengeID, content string) (*store.Structure, error) {
	if err := requireNonEmpty("content", content); err != nil {
		return nil, err
	}
	st, err := c.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, wrapStore("update challenge", "challenge", challengeID, err)
	}
	if err := c.store.UpdateChallengeContent(ctx, challengeID, content); err != nil {
		return nil, wrapStore("update challenge", "challenge", challengeID, err)
	}
	st.Content = content
	st.Embedding = nil

	c.publish(ctx, event.ChallengeUpdatedPayload{ChallengeID: challengeID, IdeaID: st.IdeaID, Content: content})
	return st, nil
}

// Approaches owns an idea's approach statements; structurally a twin of
// Challenges.
type Approaches struct {
	deps
}

// Create adds an approach to an idea.
func (c *Approaches) Create(ctx context.Context, ideaID, content string) (*store.Structure, error) {
	st, firstStructure, err := c.createStructure(ctx, ideaID, content, c.store.CreateApproach)
	if err != nil {
		return nil, err
	}

	c.publish(ctx, event.ApproachCreatedPayload{ApproachID: st.ID, IdeaID: ideaID, Content: content})
	if firstStructure {
		c.publish(ctx, event.IdeaStructureAddedPayload{IdeaID: ideaID})
	}
	return st, nil
}

// Get returns one approach.
func (c *Approaches) Get(ctx context.Context, approachID string) (*store.Structure, error) {
	st, err := c.store.GetApproach(ctx, approachID)
	if err != nil {
		return nil, wrapStore("get approach", "approach", approachID, err)
	}
	return st, nil
}

// Update replaces the content and publishes approach.updated.
func (c *Approaches) Update(ctx context.Context, approachID, content string) (*store.Structure, error) {
	if err := requireNonEmpty("content", content); err != nil {
		return nil, err
	}
	st, err := c.store.GetApproach(ctx, approachID)
	if err != nil {
		return nil, wrapStore("update approach", "approach", approachID, err)
	}
	if err := c.store.UpdateApproachContent(ctx, approachID, content); err != nil {
		return nil, wrapStore("update approach", "approach", approachID, err)
	}
	st.Content = content
	st.Embedding = nil

	c.publish(ctx, event.ApproachUpdatedPayload{ApproachID: approachID, IdeaID: st.IdeaID, Content: content})
	return st, nil
}

// createStructure validates, checks the idea, and inserts via insert. The
// returned bool reports whether this was the idea's first structure,
// observed before the insert.
func (d deps) createStructure(
	ctx context.Context,
	ideaID, content string,
	insert func(context.Context, store.Structure) error,
) (*store.Structure, bool, error) {
	if err := requireNonEmpty("content", content); err != nil {
		return nil, false, err
	}
	if _, err := d.store.GetIdea(ctx, ideaID); err != nil {
		return nil, false, wrapStore("add structure", "idea", ideaID, err)
	}

	had, err := d.store.HasStructure(ctx, ideaID)
	if err != nil {
		return nil, false, &StorageError{Op: "add structure", Err: err}
	}

	st := store.Structure{ID: d.ids.NewID(), IdeaID: ideaID, Content: content}
	if err := insert(ctx, st); err != nil {
		return nil, false, &StorageError{Op: "add structure", Err: err}
	}
	return &st, !had, nil
}
