// Package queue layers named, durable FIFO work queues over the store's
// queue_items table. Items move pending -> processing -> completed, or back
// to pending on failure until the attempt budget is spent, then to failed.
package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/justingibbs/crabgrass/internal/id"
	"github.com/justingibbs/crabgrass/internal/store"
)

// Name identifies one of the work lanes.
type Name string

const (
	Connection      Name = "connection"
	Nurture         Name = "nurture"
	Surfacing       Name = "surfacing"
	ObjectiveReview Name = "objective_review"
)

// AllNames returns every queue name.
func AllNames() []Name {
	return []Name{Connection, Nurture, Surfacing, ObjectiveReview}
}

// DefaultMaxAttempts is the attempt budget before an item is parked as
// failed.
const DefaultMaxAttempts = 3

// Item is one unit of queued work.
type Item = store.QueueItem

// Queues is the typed API over the durable queues.
type Queues struct {
	store       *store.Store
	ids         id.Generator
	maxAttempts int
	logger      *slog.Logger
}

// Option configures a Queues.
type Option func(*Queues)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(q *Queues) {
		if n > 0 {
			q.maxAttempts = n
		}
	}
}

// WithIDGenerator substitutes the item id generator, used by tests for
// deterministic ids.
func WithIDGenerator(gen id.Generator) Option {
	return func(q *Queues) { q.ids = gen }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queues) { q.logger = logger }
}

// New creates the queue API over a store.
func New(st *store.Store, opts ...Option) *Queues {
	q := &Queues{
		store:       st,
		ids:         id.NewUUIDv7Generator(),
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// MaxAttempts returns the configured attempt budget.
func (q *Queues) MaxAttempts() int { return q.maxAttempts }

// Enqueue adds a pending item and returns its id. A pending item with an
// identical payload already in the queue absorbs the enqueue; its id is
// returned instead of creating a duplicate.
func (q *Queues) Enqueue(ctx context.Context, name Name, payload map[string]any) (string, error) {
	existing, err := q.store.FindPendingByPayload(ctx, string(name), payload)
	if err != nil {
		return "", err
	}
	if existing != "" {
		q.logger.Debug("enqueue absorbed by pending duplicate", "queue", string(name), "item", existing)
		return existing, nil
	}

	itemID := q.ids.NewID()
	if err := q.store.InsertQueueItem(ctx, itemID, string(name), payload); err != nil {
		return "", err
	}
	q.logger.Debug("enqueued", "queue", string(name), "item", itemID)
	return itemID, nil
}

// Dequeue claims up to limit pending items, oldest first. Claimed items are
// marked processing; the claim is a single atomic statement, so concurrent
// claimers never share an item.
func (q *Queues) Dequeue(ctx context.Context, name Name, limit int) ([]Item, error) {
	return q.store.ClaimQueueItems(ctx, string(name), limit)
}

// Complete marks a processing item done.
func (q *Queues) Complete(ctx context.Context, itemID string) error {
	return q.store.CompleteQueueItem(ctx, itemID)
}

// Fail records one failed attempt. While attempts remain the item goes back
// to pending for another try and Fail returns nil; once the budget is spent
// the item is parked as failed and Fail returns a QueueProcessingError
// carrying the cause.
func (q *Queues) Fail(ctx context.Context, name Name, itemID string, cause error) error {
	status, attempts, err := q.store.FailQueueItem(ctx, itemID, q.maxAttempts)
	if err != nil {
		return err
	}
	if status == store.QueueStatusFailed {
		perr := &QueueProcessingError{Queue: name, ItemID: itemID, Attempts: attempts, Err: cause}
		q.logger.Error("item failed permanently",
			"queue", string(name), "item", itemID, "attempts", attempts, "error", cause)
		return perr
	}
	q.logger.Warn("item failed, will retry",
		"queue", string(name), "item", itemID, "attempts", attempts, "error", cause)
	return nil
}

// RetryFailed re-pends every failed item on a queue with attempts reset.
func (q *Queues) RetryFailed(ctx context.Context, name Name) (int64, error) {
	return q.store.RetryFailedItems(ctx, string(name))
}

// RemoveByPayloadMatch withdraws pending items whose payload field equals
// value.
func (q *Queues) RemoveByPayloadMatch(ctx context.Context, name Name, field, value string) (int64, error) {
	return q.store.RemovePendingByPayloadField(ctx, string(name), field, value)
}

// Counts returns item counts per status for a queue.
func (q *Queues) Counts(ctx context.Context, name Name) (map[string]int, error) {
	return q.store.CountQueueByStatus(ctx, string(name))
}

// ReclaimStale re-pends processing items claimed longer than olderThan ago.
// Run periodically, it recovers items stranded by a crashed worker.
func (q *Queues) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	return q.store.ReclaimStaleItems(ctx, time.Now().UTC().Add(-olderThan))
}

// CleanupCompleted prunes completed items processed longer than olderThan
// ago.
func (q *Queues) CleanupCompleted(ctx context.Context, olderThan time.Duration) (int64, error) {
	return q.store.DeleteCompletedBefore(ctx, time.Now().UTC().Add(-olderThan))
}
