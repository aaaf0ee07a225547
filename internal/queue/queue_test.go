package queue

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justingibbs/crabgrass/internal/store"
)

func newTestQueues(t *testing.T, opts ...Option) *Queues {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, opts...)
}

func TestEnqueueDequeueComplete(t *testing.T) {
	q := newTestQueues(t)
	ctx := context.Background()

	id1, err := q.Enqueue(ctx, Connection, map[string]any{"kind": "summary", "id": "s-1", "idea_id": "i-1"})
	require.NoError(t, err)
	id2, err := q.Enqueue(ctx, Connection, map[string]any{"kind": "summary", "id": "s-2", "idea_id": "i-2"})
	require.NoError(t, err)

	items, err := q.Dequeue(ctx, Connection, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, id1, items[0].ID, "oldest item claimed first")
	assert.Equal(t, id2, items[1].ID)
	assert.Equal(t, "s-1", items[0].Payload["id"])

	require.NoError(t, q.Complete(ctx, id1))

	counts, err := q.Counts(ctx, Connection)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[store.QueueStatusCompleted])
	assert.Equal(t, 1, counts[store.QueueStatusProcessing])
}

func TestEnqueueAbsorbsPendingDuplicate(t *testing.T) {
	q := newTestQueues(t)
	ctx := context.Background()

	id1, err := q.Enqueue(ctx, Nurture, map[string]any{"idea_id": "i-1"})
	require.NoError(t, err)
	id2, err := q.Enqueue(ctx, Nurture, map[string]any{"idea_id": "i-1"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "identical pending payload is not duplicated")

	counts, err := q.Counts(ctx, Nurture)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[store.QueueStatusPending])

	// Once the item is claimed, the same payload may be queued again.
	_, err = q.Dequeue(ctx, Nurture, 1)
	require.NoError(t, err)
	id3, err := q.Enqueue(ctx, Nurture, map[string]any{"idea_id": "i-1"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestFailRetriesThenParks(t *testing.T) {
	q := newTestQueues(t, WithMaxAttempts(2))
	ctx := context.Background()
	cause := errors.New("embedding provider unavailable")

	itemID, err := q.Enqueue(ctx, Nurture, map[string]any{"idea_id": "i-1"})
	require.NoError(t, err)

	// First failure: back to pending, no terminal error.
	items, err := q.Dequeue(ctx, Nurture, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NoError(t, q.Fail(ctx, Nurture, itemID, cause))

	// Second failure: budget spent, item parks as failed.
	items, err = q.Dequeue(ctx, Nurture, 1)
	require.NoError(t, err)
	require.Len(t, items, 1, "re-pended item must be claimable again")
	err = q.Fail(ctx, Nurture, itemID, cause)
	require.Error(t, err)

	var qe *QueueProcessingError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, Nurture, qe.Queue)
	assert.Equal(t, 2, qe.Attempts)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsQueueProcessingError(err))

	items, err = q.Dequeue(ctx, Nurture, 1)
	require.NoError(t, err)
	assert.Empty(t, items, "failed item must not be claimable")
}

func TestRetryFailedResetsAttempts(t *testing.T) {
	q := newTestQueues(t, WithMaxAttempts(1))
	ctx := context.Background()

	itemID, _ := q.Enqueue(ctx, ObjectiveReview, map[string]any{"idea_id": "i-1", "retired_objective_id": "o-1"})
	q.Dequeue(ctx, ObjectiveReview, 1)
	q.Fail(ctx, ObjectiveReview, itemID, errors.New("boom"))

	moved, err := q.RetryFailed(ctx, ObjectiveReview)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	items, err := q.Dequeue(ctx, ObjectiveReview, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Attempts)
}

func TestRemoveByPayloadMatchLeavesOtherLanes(t *testing.T) {
	q := newTestQueues(t)
	ctx := context.Background()

	q.Enqueue(ctx, Nurture, map[string]any{"idea_id": "i-1"})
	q.Enqueue(ctx, Connection, map[string]any{"kind": "summary", "id": "s-1", "idea_id": "i-1"})

	removed, err := q.RemoveByPayloadMatch(ctx, Nurture, "idea_id", "i-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	items, err := q.Dequeue(ctx, Connection, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1, "connection lane must be untouched")
}

func TestReclaimStaleRepends(t *testing.T) {
	q := newTestQueues(t)
	ctx := context.Background()

	itemID, _ := q.Enqueue(ctx, Surfacing, map[string]any{"type": "idea_archived", "source_type": "idea", "source_id": "i-1"})
	q.Dequeue(ctx, Surfacing, 1)

	// Negative olderThan puts the cutoff in the future: everything is stale.
	moved, err := q.ReclaimStale(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	items, err := q.Dequeue(ctx, Surfacing, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, itemID, items[0].ID)
	assert.Equal(t, 0, items[0].Attempts, "reclaim is not a failure")
}

func TestCleanupCompleted(t *testing.T) {
	q := newTestQueues(t)
	ctx := context.Background()

	itemID, _ := q.Enqueue(ctx, Surfacing, map[string]any{"type": "similar_found"})
	q.Dequeue(ctx, Surfacing, 1)
	q.Complete(ctx, itemID)

	deleted, err := q.CleanupCompleted(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	counts, _ := q.Counts(ctx, Surfacing)
	assert.Equal(t, 0, counts[store.QueueStatusCompleted])
}
