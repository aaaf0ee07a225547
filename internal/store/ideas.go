package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Idea statuses.
const (
	IdeaStatusDraft    = "Draft"
	IdeaStatusActive   = "Active"
	IdeaStatusArchived = "Archived"
)

type Idea struct {
	ID        string
	Title     string
	Status    string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateIdeaWithSummary inserts an idea and its summary in one transaction.
// The pair either both exist or neither does.
func (s *Store) CreateIdeaWithSummary(ctx context.Context, idea Idea, summary Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ideas (id, title, status, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, idea.ID, idea.Title, idea.Status, idea.AuthorID, now, now)
	if err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO summaries (id, idea_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, summary.ID, idea.ID, summary.Content, now, now)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetIdea returns one idea or ErrNotFound.
func (s *Store) GetIdea(ctx context.Context, id string) (*Idea, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, status, author_id, created_at, updated_at
		FROM ideas WHERE id = ?
	`, id)

	var idea Idea
	err := row.Scan(&idea.ID, &idea.Title, &idea.Status, &idea.AuthorID, &idea.CreatedAt, &idea.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get idea: %w", err)
	}
	return &idea, nil
}

// ListIdeas returns ideas, optionally filtered by status, newest first.
func (s *Store) ListIdeas(ctx context.Context, status string) ([]Idea, error) {
	query := `
		SELECT id, title, status, author_id, created_at, updated_at
		FROM ideas
	`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	ideas := []Idea{}
	for rows.Next() {
		var idea Idea
		if err := rows.Scan(&idea.ID, &idea.Title, &idea.Status, &idea.AuthorID, &idea.CreatedAt, &idea.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ideas: %w", err)
	}
	return ideas, nil
}

// UpdateIdea sets title and/or status. Empty arguments leave the column
// unchanged. Returns ErrNotFound when the idea does not exist.
func (s *Store) UpdateIdea(ctx context.Context, id, title, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ideas
		SET title = COALESCE(NULLIF(?, ''), title),
		    status = COALESCE(NULLIF(?, ''), status),
		    updated_at = ?
		WHERE id = ?
	`, title, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update idea: %w", err)
	}
	return checkFound(res, "update idea")
}

// HasStructure reports whether the idea has at least one challenge or
// approach.
func (s *Store) HasStructure(ctx context.Context, ideaID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM challenges WHERE idea_id = ?)
		     + (SELECT COUNT(*) FROM approaches WHERE idea_id = ?)
	`, ideaID, ideaID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count structure: %w", err)
	}
	return count > 0, nil
}

// Contributors returns the distinct users who touched an idea: its author
// plus every user with a session on it.
func (s *Store) Contributors(ctx context.Context, ideaID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT author_id FROM ideas WHERE id = ?
		UNION
		SELECT user_id FROM sessions WHERE idea_id = ?
		ORDER BY 1
	`, ideaID, ideaID)
	if err != nil {
		return nil, fmt.Errorf("query contributors: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan contributor: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributors: %w", err)
	}
	return users, nil
}

// checkFound converts a zero-row UPDATE/DELETE into ErrNotFound.
func checkFound(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
