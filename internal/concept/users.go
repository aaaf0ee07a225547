package concept

import (
	"context"

	"github.com/justingibbs/crabgrass/internal/store"
)

// Users owns accounts and their watches on ideas and objectives. A leaf
// concept: no events.
type Users struct {
	deps
}

// Create adds a user. Role must be Frontline or Senior.
func (c *Users) Create(ctx context.Context, name, email, role string) (*store.User, error) {
	if err := requireNonEmpty("name", name); err != nil {
		return nil, err
	}
	if err := requireNonEmpty("email", email); err != nil {
		return nil, err
	}
	if role != store.RoleFrontline && role != store.RoleSenior {
		return nil, &ValidationError{Field: "role", Reason: "must be Frontline or Senior"}
	}

	u := store.User{ID: c.ids.NewID(), Name: name, Email: email, Role: role}
	if err := c.store.CreateUser(ctx, u); err != nil {
		return nil, &StorageError{Op: "create user", Err: err}
	}
	return &u, nil
}

// Get returns one user.
func (c *Users) Get(ctx context.Context, userID string) (*store.User, error) {
	u, err := c.store.GetUser(ctx, userID)
	if err != nil {
		return nil, wrapStore("get user", "user", userID, err)
	}
	return u, nil
}

// Watch subscribes a user to a target's surfacing notifications. Watching
// twice is a no-op.
func (c *Users) Watch(ctx context.Context, userID, targetType, targetID string) error {
	if targetType != store.WatchTargetIdea && targetType != store.WatchTargetObjective {
		return &ValidationError{Field: "target_type", Reason: "must be idea or objective"}
	}
	if _, err := c.store.AddWatch(ctx, userID, targetType, targetID); err != nil {
		return &StorageError{Op: "watch", Err: err}
	}
	return nil
}

// Unwatch removes a watch; removing a missing watch is a no-op.
func (c *Users) Unwatch(ctx context.Context, userID, targetType, targetID string) error {
	if _, err := c.store.RemoveWatch(ctx, userID, targetType, targetID); err != nil {
		return &StorageError{Op: "unwatch", Err: err}
	}
	return nil
}
