package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Coherent action statuses.
const (
	ActionStatusPending    = "Pending"
	ActionStatusInProgress = "In Progress"
	ActionStatusComplete   = "Complete"
)

type CoherentAction struct {
	ID        string
	IdeaID    string
	Content   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Store) CreateAction(ctx context.Context, a CoherentAction) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO coherent_actions (id, idea_id, content, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.IdeaID, a.Content, a.Status, now, now)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

func (s *Store) GetAction(ctx context.Context, id string) (*CoherentAction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, idea_id, content, status, created_at, updated_at
		FROM coherent_actions WHERE id = ?
	`, id)

	var a CoherentAction
	err := row.Scan(&a.ID, &a.IdeaID, &a.Content, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get action: %w", err)
	}
	return &a, nil
}

// UpdateAction sets content and/or status; empty arguments leave the
// column unchanged.
func (s *Store) UpdateAction(ctx context.Context, id, content, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE coherent_actions
		SET content = COALESCE(NULLIF(?, ''), content),
		    status = COALESCE(NULLIF(?, ''), status),
		    updated_at = ?
		WHERE id = ?
	`, content, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update action: %w", err)
	}
	return checkFound(res, "update action")
}

// ListActionsByIdea returns an idea's actions, oldest first.
func (s *Store) ListActionsByIdea(ctx context.Context, ideaID string) ([]CoherentAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, idea_id, content, status, created_at, updated_at
		FROM coherent_actions WHERE idea_id = ?
		ORDER BY created_at, id
	`, ideaID)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	actions := []CoherentAction{}
	for rows.Next() {
		var a CoherentAction
		if err := rows.Scan(&a.ID, &a.IdeaID, &a.Content, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return actions, nil
}
