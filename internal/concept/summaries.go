package concept

import (
	"context"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/store"
)

// Summaries owns the one-per-idea summary text. Creation happens with the
// idea; only the content evolves afterwards.
type Summaries struct {
	deps
}

// Get returns one summary.
func (c *Summaries) Get(ctx context.Context, summaryID string) (*store.Summary, error) {
	sum, err := c.store.GetSummary(ctx, summaryID)
	if err != nil {
		return nil, wrapStore("get summary", "summary", summaryID, err)
	}
	return sum, nil
}

// GetByIdea returns the idea's summary.
func (c *Summaries) GetByIdea(ctx context.Context, ideaID string) (*store.Summary, error) {
	sum, err := c.store.GetSummaryByIdea(ctx, ideaID)
	if err != nil {
		return nil, wrapStore("get summary", "idea", ideaID, err)
	}
	return sum, nil
}

// Update replaces the content and publishes summary.updated. The stored
// embedding is cleared; the wiring regenerates it from the new text.
func (c *Summaries) Update(ctx context.Context, summaryID, content string) (*store.Summary, error) {
	if err := requireNonEmpty("content", content); err != nil {
		return nil, err
	}

	sum, err := c.store.GetSummary(ctx, summaryID)
	if err != nil {
		return nil, wrapStore("update summary", "summary", summaryID, err)
	}
	if err := c.store.UpdateSummaryContent(ctx, summaryID, content); err != nil {
		return nil, wrapStore("update summary", "summary", summaryID, err)
	}
	sum.Content = content
	sum.Embedding = nil

	c.publish(ctx, event.SummaryUpdatedPayload{SummaryID: summaryID, IdeaID: sum.IdeaID, Content: content})
	return sum, nil
}
