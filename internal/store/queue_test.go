package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func enqueueN(t *testing.T, s *Store, queue string, n int) []string {
	t.Helper()
	ctx := context.Background()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("q-%d", i)
		err := s.InsertQueueItem(ctx, ids[i], queue, map[string]any{"idea_id": fmt.Sprintf("i-%d", i)})
		if err != nil {
			t.Fatalf("InsertQueueItem() failed: %v", err)
		}
	}
	return ids
}

func TestClaimQueueItems_FIFO(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	ids := enqueueN(t, s, "connection", 3)

	items, err := s.ClaimQueueItems(ctx, "connection", 2)
	if err != nil {
		t.Fatalf("ClaimQueueItems() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("claimed %d items, expected 2", len(items))
	}
	if items[0].ID != ids[0] || items[1].ID != ids[1] {
		t.Errorf("claimed out of order: %s, %s", items[0].ID, items[1].ID)
	}
	for _, item := range items {
		if item.Status != QueueStatusProcessing {
			t.Errorf("item %s status = %s, expected processing", item.ID, item.Status)
		}
		if item.ClaimedAt.IsZero() {
			t.Errorf("item %s has no claimed_at", item.ID)
		}
	}
}

func TestClaimQueueItems_NeverSharesItems(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	enqueueN(t, s, "nurture", 4)

	first, err := s.ClaimQueueItems(ctx, "nurture", 3)
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	second, err := s.ClaimQueueItems(ctx, "nurture", 3)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}

	if len(first)+len(second) != 4 {
		t.Fatalf("claimed %d + %d items, expected 4 total", len(first), len(second))
	}
	seen := map[string]bool{}
	for _, item := range append(first, second...) {
		if seen[item.ID] {
			t.Errorf("item %s claimed twice", item.ID)
		}
		seen[item.ID] = true
	}
}

func TestClaimQueueItems_ConcurrentClaimersNeverShare(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	const total = 20
	const claimers = 4
	enqueueN(t, s, "nurture", total)

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := map[string]int{}
	for w := 0; w < claimers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				items, err := s.ClaimQueueItems(ctx, "nurture", 3)
				if err != nil {
					t.Errorf("concurrent claim failed: %v", err)
					return
				}
				if len(items) == 0 {
					return
				}
				mu.Lock()
				for _, item := range items {
					claimed[item.ID]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(claimed) != total {
		t.Errorf("claimed %d distinct items, expected %d", len(claimed), total)
	}
	for id, n := range claimed {
		if n != 1 {
			t.Errorf("item %s claimed %d times", id, n)
		}
	}
}

func TestClaimQueueItems_IgnoresOtherQueues(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	enqueueN(t, s, "surfacing", 2)

	items, err := s.ClaimQueueItems(ctx, "connection", 10)
	if err != nil {
		t.Fatalf("ClaimQueueItems() failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("claimed %d items from the wrong queue", len(items))
	}
}

func TestCompleteQueueItem(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	enqueueN(t, s, "connection", 1)

	items, _ := s.ClaimQueueItems(ctx, "connection", 1)
	if err := s.CompleteQueueItem(ctx, items[0].ID); err != nil {
		t.Fatalf("CompleteQueueItem() failed: %v", err)
	}

	item, err := s.GetQueueItem(ctx, items[0].ID)
	if err != nil {
		t.Fatalf("GetQueueItem() failed: %v", err)
	}
	if item.Status != QueueStatusCompleted {
		t.Errorf("status = %s, expected completed", item.Status)
	}
	if item.ProcessedAt.IsZero() {
		t.Error("processed_at not set")
	}
}

func TestCompleteQueueItem_RequiresProcessing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	ids := enqueueN(t, s, "connection", 1)

	// Still pending: completing must fail.
	if err := s.CompleteQueueItem(ctx, ids[0]); err != ErrNotFound {
		t.Errorf("CompleteQueueItem() on pending item = %v, expected ErrNotFound", err)
	}
}

func TestFailQueueItem_RetriesUntilMaxAttempts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	ids := enqueueN(t, s, "nurture", 1)
	const maxAttempts = 3

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		items, err := s.ClaimQueueItems(ctx, "nurture", 1)
		if err != nil {
			t.Fatalf("claim %d failed: %v", attempt, err)
		}
		if len(items) != 1 {
			t.Fatalf("claim %d returned %d items", attempt, len(items))
		}

		status, attempts, err := s.FailQueueItem(ctx, ids[0], maxAttempts)
		if err != nil {
			t.Fatalf("FailQueueItem() failed: %v", err)
		}
		if attempts != attempt {
			t.Errorf("attempts = %d, expected %d", attempts, attempt)
		}
		expected := QueueStatusPending
		if attempt == maxAttempts {
			expected = QueueStatusFailed
		}
		if status != expected {
			t.Errorf("after fail %d status = %s, expected %s", attempt, status, expected)
		}
	}

	// Terminal: nothing left to claim.
	items, _ := s.ClaimQueueItems(ctx, "nurture", 1)
	if len(items) != 0 {
		t.Errorf("failed item was claimed again")
	}
}

func TestRetryFailedItems(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	ids := enqueueN(t, s, "objective_review", 1)

	s.ClaimQueueItems(ctx, "objective_review", 1)
	s.FailQueueItem(ctx, ids[0], 1) // maxAttempts 1: immediately failed

	moved, err := s.RetryFailedItems(ctx, "objective_review")
	if err != nil {
		t.Fatalf("RetryFailedItems() failed: %v", err)
	}
	if moved != 1 {
		t.Errorf("moved = %d, expected 1", moved)
	}

	item, _ := s.GetQueueItem(ctx, ids[0])
	if item.Status != QueueStatusPending || item.Attempts != 0 {
		t.Errorf("item status=%s attempts=%d, expected pending/0", item.Status, item.Attempts)
	}
}

func TestRemovePendingByPayloadField(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	s.InsertQueueItem(ctx, "q-a", "nurture", map[string]any{"idea_id": "i-1"})
	s.InsertQueueItem(ctx, "q-b", "nurture", map[string]any{"idea_id": "i-2"})
	s.InsertQueueItem(ctx, "q-c", "connection", map[string]any{"idea_id": "i-1"})

	removed, err := s.RemovePendingByPayloadField(ctx, "nurture", "idea_id", "i-1")
	if err != nil {
		t.Fatalf("RemovePendingByPayloadField() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, expected 1", removed)
	}

	// The other queue's item with the same idea survives.
	if _, err := s.GetQueueItem(ctx, "q-c"); err != nil {
		t.Errorf("connection item was removed: %v", err)
	}
	if _, err := s.GetQueueItem(ctx, "q-b"); err != nil {
		t.Errorf("unrelated nurture item was removed: %v", err)
	}
	if _, err := s.GetQueueItem(ctx, "q-a"); err != ErrNotFound {
		t.Errorf("matched item still present, err = %v", err)
	}
}

func TestReclaimStaleItems(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	ids := enqueueN(t, s, "connection", 1)

	s.ClaimQueueItems(ctx, "connection", 1)

	// A cutoff in the future makes the fresh claim stale.
	moved, err := s.ReclaimStaleItems(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleItems() failed: %v", err)
	}
	if moved != 1 {
		t.Errorf("moved = %d, expected 1", moved)
	}

	item, _ := s.GetQueueItem(ctx, ids[0])
	if item.Status != QueueStatusPending {
		t.Errorf("status = %s, expected pending", item.Status)
	}
	if item.Attempts != 0 {
		t.Errorf("attempts = %d, reclaim must not count as a failure", item.Attempts)
	}
}

func TestReclaimStaleItems_LeavesFreshClaims(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	ids := enqueueN(t, s, "connection", 1)

	s.ClaimQueueItems(ctx, "connection", 1)

	moved, err := s.ReclaimStaleItems(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleItems() failed: %v", err)
	}
	if moved != 0 {
		t.Errorf("moved = %d, expected 0", moved)
	}

	item, _ := s.GetQueueItem(ctx, ids[0])
	if item.Status != QueueStatusProcessing {
		t.Errorf("status = %s, expected processing", item.Status)
	}
}

func TestDeleteCompletedBefore(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	ids := enqueueN(t, s, "surfacing", 1)

	s.ClaimQueueItems(ctx, "surfacing", 1)
	s.CompleteQueueItem(ctx, ids[0])

	deleted, err := s.DeleteCompletedBefore(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("DeleteCompletedBefore() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, expected 1", deleted)
	}
}

func TestCountQueueByStatus(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	enqueueN(t, s, "connection", 3)

	items, _ := s.ClaimQueueItems(ctx, "connection", 1)
	s.CompleteQueueItem(ctx, items[0].ID)

	counts, err := s.CountQueueByStatus(ctx, "connection")
	if err != nil {
		t.Fatalf("CountQueueByStatus() failed: %v", err)
	}
	if counts[QueueStatusPending] != 2 {
		t.Errorf("pending = %d, expected 2", counts[QueueStatusPending])
	}
	if counts[QueueStatusCompleted] != 1 {
		t.Errorf("completed = %d, expected 1", counts[QueueStatusCompleted])
	}
	if counts[QueueStatusFailed] != 0 {
		t.Errorf("failed = %d, expected 0", counts[QueueStatusFailed])
	}
}
