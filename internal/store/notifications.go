package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Notification struct {
	ID         string
	UserID     string
	Type       string
	Message    string
	SourceType string
	SourceID   string
	RelatedID  string
	Read       bool
	CreatedAt  time.Time
}

func (s *Store) CreateNotification(ctx context.Context, n Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, message, source_type, source_id, related_id, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`, n.ID, n.UserID, n.Type, n.Message, n.SourceType, n.SourceID, nullable(n.RelatedID), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
// unreadOnly narrows to unread.
func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	query := `
		SELECT id, user_id, type, message, source_type, source_id, related_id, read, created_at
		FROM notifications WHERE user_id = ?
	`
	if unreadOnly {
		query += " AND read = 0"
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var (
			n       Notification
			related sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.SourceType, &n.SourceID, &related, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.RelatedID = fromNull(related)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifications, nil
}

func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return checkFound(res, "mark read")
}

// MarkAllNotificationsRead returns how many rows flipped.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all read: rows affected: %w", err)
	}
	return n, nil
}

// DeleteOldNotifications removes read notifications created before cutoff.
func (s *Store) DeleteOldNotifications(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE read = 1 AND created_at < ?
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: rows affected: %w", err)
	}
	return n, nil
}

// GetNotification returns one notification or ErrNotFound.
func (s *Store) GetNotification(ctx context.Context, id string) (*Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, message, source_type, source_id, related_id, read, created_at
		FROM notifications WHERE id = ?
	`, id)

	var (
		n       Notification
		related sql.NullString
	)
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.SourceType, &n.SourceID, &related, &n.Read, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	n.RelatedID = fromNull(related)
	return &n, nil
}
