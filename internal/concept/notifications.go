package concept

import (
	"context"
	"time"

	"github.com/justingibbs/crabgrass/internal/store"
)

// Notifications owns user-facing notifications. It is a leaf concept: its
// mutations publish no events, so nothing downstream can loop a
// notification back into more work.
type Notifications struct {
	deps
}

// Create records a notification for one user.
func (c *Notifications) Create(ctx context.Context, userID, typ, message, sourceType, sourceID, relatedID string) (*store.Notification, error) {
	if err := requireNonEmpty("user_id", userID); err != nil {
		return nil, err
	}
	if err := requireNonEmpty("type", typ); err != nil {
		return nil, err
	}
	if err := requireNonEmpty("message", message); err != nil {
		return nil, err
	}

	n := store.Notification{
		ID:         c.ids.NewID(),
		UserID:     userID,
		Type:       typ,
		Message:    message,
		SourceType: sourceType,
		SourceID:   sourceID,
		RelatedID:  relatedID,
	}
	if err := c.store.CreateNotification(ctx, n); err != nil {
		return nil, &StorageError{Op: "create notification", Err: err}
	}
	return &n, nil
}

// ListForUser returns a user's notifications, newest first.
func (c *Notifications) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]store.Notification, error) {
	list, err := c.store.ListNotifications(ctx, userID, unreadOnly)
	if err != nil {
		return nil, &StorageError{Op: "list notifications", Err: err}
	}
	return list, nil
}

// CountUnread returns how many notifications the user has not read.
func (c *Notifications) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := c.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, &StorageError{Op: "count unread", Err: err}
	}
	return count, nil
}

// MarkRead flags one notification as read.
func (c *Notifications) MarkRead(ctx context.Context, notificationID string) error {
	if err := c.store.MarkNotificationRead(ctx, notificationID); err != nil {
		return wrapStore("mark read", "notification", notificationID, err)
	}
	return nil
}

// MarkAllRead flags every unread notification for a user; returns the count
// flipped.
func (c *Notifications) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := c.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, &StorageError{Op: "mark all read", Err: err}
	}
	return n, nil
}

// DeleteOld prunes read notifications older than the retention window.
func (c *Notifications) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := c.store.DeleteOldNotifications(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, &StorageError{Op: "delete old notifications", Err: err}
	}
	return n, nil
}
