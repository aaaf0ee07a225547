package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Objective statuses.
const (
	ObjectiveStatusActive  = "Active"
	ObjectiveStatusRetired = "Retired"
)

type Objective struct {
	ID          string
	Title       string
	Description string
	Status      string
	AuthorID    string
	ParentID    string
	Embedding   []float32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s *Store) CreateObjective(ctx context.Context, o Objective) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO objectives (id, title, description, status, author_id, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.Title, o.Description, o.Status, o.AuthorID, nullable(o.ParentID), now, now)
	if err != nil {
		return fmt.Errorf("insert objective: %w", err)
	}
	return nil
}

func (s *Store) GetObjective(ctx context.Context, id string) (*Objective, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, status, author_id, parent_id, embedding, created_at, updated_at
		FROM objectives WHERE id = ?
	`, id)
	return scanObjective(row)
}

func scanObjective(row *sql.Row) (*Objective, error) {
	var (
		o      Objective
		parent sql.NullString
		emb    sql.NullString
	)
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.Status, &o.AuthorID, &parent, &emb, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get objective: %w", err)
	}
	o.ParentID = fromNull(parent)
	if o.Embedding, err = unmarshalEmbedding(emb); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateObjective sets title and/or description; empty arguments leave the
// column unchanged.
func (s *Store) UpdateObjective(ctx context.Context, id, title, description string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE objectives
		SET title = COALESCE(NULLIF(?, ''), title),
		    description = COALESCE(NULLIF(?, ''), description),
		    updated_at = ?
		WHERE id = ?
	`, title, description, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update objective: %w", err)
	}
	return checkFound(res, "update objective")
}

// RetireObjective moves an Active objective to Retired. Returns (false, nil)
// when the objective exists but is already retired.
func (s *Store) RetireObjective(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE objectives SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, ObjectiveStatusRetired, time.Now().UTC(), id, ObjectiveStatusActive)
	if err != nil {
		return false, fmt.Errorf("retire objective: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("retire objective: rows affected: %w", err)
	}
	if n > 0 {
		return true, nil
	}
	// Distinguish "already retired" from "does not exist".
	if _, err := s.GetObjective(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) SetObjectiveEmbedding(ctx context.Context, id string, vec []float32) error {
	data, err := marshalEmbedding(vec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE objectives SET embedding = ?, updated_at = ? WHERE id = ?
	`, data, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set objective embedding: %w", err)
	}
	return checkFound(res, "set objective embedding")
}

// ListActiveObjectives returns active objectives with whatever embeddings
// they have, oldest first. The objective review agent scores against these.
func (s *Store) ListActiveObjectives(ctx context.Context) ([]Objective, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, status, author_id, parent_id, embedding, created_at, updated_at
		FROM objectives WHERE status = ?
		ORDER BY created_at, id
	`, ObjectiveStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active objectives: %w", err)
	}
	defer rows.Close()

	objectives := []Objective{}
	for rows.Next() {
		var (
			o      Objective
			parent sql.NullString
			emb    sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Title, &o.Description, &o.Status, &o.AuthorID, &parent, &emb, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan objective: %w", err)
		}
		o.ParentID = fromNull(parent)
		if o.Embedding, err = unmarshalEmbedding(emb); err != nil {
			return nil, err
		}
		objectives = append(objectives, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objectives: %w", err)
	}
	return objectives, nil
}

// LinkIdeaObjective records a link; returns false when it already existed.
func (s *Store) LinkIdeaObjective(ctx context.Context, ideaID, objectiveID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO idea_objectives (idea_id, objective_id, linked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (idea_id, objective_id) DO NOTHING
	`, ideaID, objectiveID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("link idea to objective: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("link idea to objective: rows affected: %w", err)
	}
	return n > 0, nil
}

// UnlinkIdeaObjective removes a link; returns false when none existed.
func (s *Store) UnlinkIdeaObjective(ctx context.Context, ideaID, objectiveID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM idea_objectives WHERE idea_id = ? AND objective_id = ?
	`, ideaID, objectiveID)
	if err != nil {
		return false, fmt.Errorf("unlink idea from objective: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlink idea from objective: rows affected: %w", err)
	}
	return n > 0, nil
}

// IdeasForObjective returns the ids of ideas linked to an objective,
// oldest link first.
func (s *Store) IdeasForObjective(ctx context.Context, objectiveID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idea_id FROM idea_objectives WHERE objective_id = ?
		ORDER BY linked_at, idea_id
	`, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("ideas for objective: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan idea id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate idea ids: %w", err)
	}
	return ids, nil
}

// HasActiveObjectiveLink reports whether the idea is linked to at least one
// objective that is still Active.
func (s *Store) HasActiveObjectiveLink(ctx context.Context, ideaID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM idea_objectives io
		JOIN objectives o ON o.id = io.objective_id
		WHERE io.idea_id = ? AND o.status = ?
	`, ideaID, ObjectiveStatusActive).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count active links: %w", err)
	}
	return count > 0, nil
}
