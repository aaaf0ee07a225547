package concept

import (
	"context"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/store"
)

// Ideas owns the idea lifecycle: Draft -> Active -> Archived.
type Ideas struct {
	deps
}

// Create makes a new idea together with its summary; the pair is written in
// one transaction, so an idea without a summary never exists. Publishes
// idea.created and summary.created, one event per created concept.
func (c *Ideas) Create(ctx context.Context, title, summaryContent, authorID string) (*store.Idea, *store.Summary, error) {
	if err := requireNonEmpty("title", title); err != nil {
		return nil, nil, err
	}
	if err := requireNonEmpty("summary", summaryContent); err != nil {
		return nil, nil, err
	}
	if err := requireNonEmpty("author_id", authorID); err != nil {
		return nil, nil, err
	}

	idea := store.Idea{
		ID:       c.ids.NewID(),
		Title:    title,
		Status:   store.IdeaStatusDraft,
		AuthorID: authorID,
	}
	summary := store.Summary{
		ID:      c.ids.NewID(),
		IdeaID:  idea.ID,
		Content: summaryContent,
	}
	if err := c.store.CreateIdeaWithSummary(ctx, idea, summary); err != nil {
		return nil, nil, &StorageError{Op: "create idea", Err: err}
	}

	c.publish(ctx, event.IdeaCreatedPayload{IdeaID: idea.ID, Title: title, AuthorID: authorID})
	c.publish(ctx, event.SummaryCreatedPayload{SummaryID: summary.ID, IdeaID: idea.ID, Content: summaryContent})
	return &idea, &summary, nil
}

// Get returns one idea.
func (c *Ideas) Get(ctx context.Context, ideaID string) (*store.Idea, error) {
	idea, err := c.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, wrapStore("get idea", "idea", ideaID, err)
	}
	return idea, nil
}

// List returns ideas, optionally filtered by status.
func (c *Ideas) List(ctx context.Context, status string) ([]store.Idea, error) {
	ideas, err := c.store.ListIdeas(ctx, status)
	if err != nil {
		return nil, &StorageError{Op: "list ideas", Err: err}
	}
	return ideas, nil
}

// Update changes title and/or status and publishes idea.updated with the
// applied changes. Archiving goes through Archive, not Update.
func (c *Ideas) Update(ctx context.Context, ideaID, title, status string) (*store.Idea, error) {
	if title == "" && status == "" {
		return nil, &ValidationError{Field: "changes", Reason: "nothing to update"}
	}
	if status != "" && status != store.IdeaStatusDraft && status != store.IdeaStatusActive {
		return nil, &ValidationError{Field: "status", Reason: "must be Draft or Active"}
	}

	if err := c.store.UpdateIdea(ctx, ideaID, title, status); err != nil {
		return nil, wrapStore("update idea", "idea", ideaID, err)
	}
	idea, err := c.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, wrapStore("update idea", "idea", ideaID, err)
	}

	changes := map[string]any{}
	if title != "" {
		changes["title"] = title
	}
	if status != "" {
		changes["status"] = status
	}
	c.publish(ctx, event.IdeaUpdatedPayload{IdeaID: ideaID, Changes: changes})
	return idea, nil
}

// Archive moves an idea to Archived and publishes idea.archived. Archiving
// an already archived idea is a no-op and publishes nothing.
func (c *Ideas) Archive(ctx context.Context, ideaID string) (*store.Idea, error) {
	idea, err := c.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, wrapStore("archive idea", "idea", ideaID, err)
	}
	if idea.Status == store.IdeaStatusArchived {
		return idea, nil
	}

	if err := c.store.UpdateIdea(ctx, ideaID, "", store.IdeaStatusArchived); err != nil {
		return nil, wrapStore("archive idea", "idea", ideaID, err)
	}
	idea.Status = store.IdeaStatusArchived

	c.publish(ctx, event.IdeaArchivedPayload{IdeaID: ideaID})
	return idea, nil
}
