package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Queue item statuses.
const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
)

type QueueItem struct {
	ID          string
	Queue       string
	Payload     map[string]any
	Status      string
	Attempts    int
	CreatedAt   time.Time
	ClaimedAt   time.Time
	ProcessedAt time.Time
}

func (s *Store) InsertQueueItem(ctx context.Context, id, queue string, payload map[string]any) error {
	data, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO queue_items (id, queue, payload, status, attempts, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, id, queue, data, QueueStatusPending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert queue item: %w", err)
	}
	return nil
}

// ClaimQueueItems atomically moves up to limit pending items (oldest first)
// to processing and returns them. The claim happens in a single UPDATE with
// RETURNING, so two concurrent claimers can never receive the same item.
// FindPendingByPayload returns the id of a pending item in queue whose
// payload is identical to payload, or "" when none exists. Payloads are
// compared by their canonical JSON encoding.
func (s *Store) FindPendingByPayload(ctx context.Context, queue string, payload map[string]any) (string, error) {
	data, err := marshalPayload(payload)
	if err != nil {
		return "", err
	}
	var id string
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM queue_items
		WHERE queue = ? AND status = ? AND payload = ?
		LIMIT 1
	`, queue, QueueStatusPending, data).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find pending item: %w", err)
	}
	return id, nil
}

func (s *Store) ClaimQueueItems(ctx context.Context, queue string, limit int) ([]QueueItem, error) {
	now := time.Now().UTC()
	rows, err := s.db.QueryContext(ctx, `
		UPDATE queue_items
		SET status = ?, claimed_at = ?
		WHERE id IN (
			SELECT id FROM queue_items
			WHERE queue = ? AND status = ?
			ORDER BY created_at, id
			LIMIT ?
		)
		RETURNING id, queue, payload, status, attempts, created_at, claimed_at, processed_at
	`, QueueStatusProcessing, now, queue, QueueStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("claim queue items: %w", err)
	}
	defer rows.Close()

	items := []QueueItem{}
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claimed items: %w", err)
	}
	return items, nil
}

// CompleteQueueItem moves a processing item to completed. ErrNotFound when
// the item is not currently processing.
func (s *Store) CompleteQueueItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queue_items SET status = ?, processed_at = ?
		WHERE id = ? AND status = ?
	`, QueueStatusCompleted, time.Now().UTC(), id, QueueStatusProcessing)
	if err != nil {
		return fmt.Errorf("complete queue item: %w", err)
	}
	return checkFound(res, "complete queue item")
}

// FailQueueItem bumps attempts and either re-pends the item for another try
// or parks it as failed once attempts reach maxAttempts. Returns the
// resulting status and attempt count.
func (s *Store) FailQueueItem(ctx context.Context, id string, maxAttempts int) (string, int, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE queue_items
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END,
		    claimed_at = NULL,
		    processed_at = CASE WHEN attempts + 1 >= ? THEN ? ELSE processed_at END
		WHERE id = ? AND status = ?
		RETURNING status, attempts
	`, maxAttempts, QueueStatusFailed, QueueStatusPending,
		maxAttempts, time.Now().UTC(), id, QueueStatusProcessing)

	var (
		status   string
		attempts int
	)
	err := row.Scan(&status, &attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, ErrNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("fail queue item: %w", err)
	}
	return status, attempts, nil
}

// RetryFailedItems re-pends every failed item on a queue with attempts
// reset. Returns how many moved.
func (s *Store) RetryFailedItems(ctx context.Context, queue string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queue_items SET status = ?, attempts = 0, claimed_at = NULL
		WHERE queue = ? AND status = ?
	`, QueueStatusPending, queue, QueueStatusFailed)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("retry failed items: rows affected: %w", err)
	}
	return n, nil
}

// RemovePendingByPayloadField deletes pending items on a queue whose payload
// JSON field equals value. Used to withdraw work that is no longer relevant
// (archived ideas, ideas that just gained structure).
func (s *Store) RemovePendingByPayloadField(ctx context.Context, queue, field, value string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM queue_items
		WHERE queue = ? AND status = ? AND json_extract(payload, '$.' || ?) = ?
	`, queue, QueueStatusPending, field, value)
	if err != nil {
		return 0, fmt.Errorf("remove by payload field: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove by payload field: rows affected: %w", err)
	}
	return n, nil
}

// CountQueueByStatus returns item counts per status for a queue. Statuses
// with no items are present with a zero count.
func (s *Store) CountQueueByStatus(ctx context.Context, queue string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM queue_items WHERE queue = ? GROUP BY status
	`, queue)
	if err != nil {
		return nil, fmt.Errorf("count queue items: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{
		QueueStatusPending:    0,
		QueueStatusProcessing: 0,
		QueueStatusCompleted:  0,
		QueueStatusFailed:     0,
	}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// ReclaimStaleItems re-pends processing items claimed before cutoff.
// Attempts are preserved: a reclaimed item has not failed, its worker did.
func (s *Store) ReclaimStaleItems(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queue_items SET status = ?, claimed_at = NULL
		WHERE status = ? AND claimed_at < ?
	`, QueueStatusPending, QueueStatusProcessing, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reclaim stale items: rows affected: %w", err)
	}
	return n, nil
}

// DeleteCompletedBefore prunes completed items processed before cutoff.
func (s *Store) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM queue_items WHERE status = ? AND processed_at < ?
	`, QueueStatusCompleted, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete completed items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete completed items: rows affected: %w", err)
	}
	return n, nil
}

// GetQueueItem returns one item or ErrNotFound.
func (s *Store) GetQueueItem(ctx context.Context, id string) (*QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, queue, payload, status, attempts, created_at, claimed_at, processed_at
		FROM queue_items WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get queue item: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get queue item: %w", err)
		}
		return nil, ErrNotFound
	}
	item, err := scanQueueItem(rows)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanQueueItem(rows *sql.Rows) (QueueItem, error) {
	var (
		item      QueueItem
		payload   string
		claimed   sql.NullTime
		processed sql.NullTime
	)
	err := rows.Scan(&item.ID, &item.Queue, &payload, &item.Status, &item.Attempts, &item.CreatedAt, &claimed, &processed)
	if err != nil {
		return QueueItem{}, fmt.Errorf("scan queue item: %w", err)
	}
	if item.Payload, err = unmarshalPayload(payload); err != nil {
		return QueueItem{}, err
	}
	if claimed.Valid {
		item.ClaimedAt = claimed.Time
	}
	if processed.Valid {
		item.ProcessedAt = processed.Time
	}
	return item, nil
}
