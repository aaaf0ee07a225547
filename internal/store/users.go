package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User roles.
const (
	RoleFrontline = "Frontline"
	RoleSenior    = "Senior"
)

// Watch target types.
const (
	WatchTargetIdea      = "idea"
	WatchTargetObjective = "objective"
)

type User struct {
	ID        string
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
}

func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.Role, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, created_at FROM users WHERE id = ?
	`, id)

	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// AddWatch records a watch; watching twice is a no-op. Returns true when a
// new watch was recorded.
func (s *Store) AddWatch(ctx context.Context, userID, targetType, targetID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO watches (user_id, target_type, target_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, target_type, target_id) DO NOTHING
	`, userID, targetType, targetID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert watch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert watch: rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveWatch deletes a watch; returns false when none existed.
func (s *Store) RemoveWatch(ctx context.Context, userID, targetType, targetID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM watches WHERE user_id = ? AND target_type = ? AND target_id = ?
	`, userID, targetType, targetID)
	if err != nil {
		return false, fmt.Errorf("delete watch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete watch: rows affected: %w", err)
	}
	return n > 0, nil
}

// Watchers returns the users watching a target, in stable order.
func (s *Store) Watchers(ctx context.Context, targetType, targetID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM watches
		WHERE target_type = ? AND target_id = ?
		ORDER BY user_id
	`, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("query watchers: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan watcher: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchers: %w", err)
	}
	return users, nil
}
