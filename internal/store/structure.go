package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Structure is a challenge or approach row; the two tables share a shape.
type Structure struct {
	ID        string
	IdeaID    string
	Content   string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	tableChallenges = "challenges"
	tableApproaches = "approaches"
)

func (s *Store) CreateChallenge(ctx context.Context, st Structure) error {
	return s.insertStructure(ctx, tableChallenges, st)
}

func (s *Store) CreateApproach(ctx context.Context, st Structure) error {
	return s.insertStructure(ctx, tableApproaches, st)
}

func (s *Store) GetChallenge(ctx context.Context, id string) (*Structure, error) {
	return s.getStructure(ctx, tableChallenges, id)
}

func (s *Store) GetApproach(ctx context.Context, id string) (*Structure, error) {
	return s.getStructure(ctx, tableApproaches, id)
}

func (s *Store) UpdateChallengeContent(ctx context.Context, id, content string) error {
	return s.updateStructureContent(ctx, tableChallenges, id, content)
}

func (s *Store) UpdateApproachContent(ctx context.Context, id, content string) error {
	return s.updateStructureContent(ctx, tableApproaches, id, content)
}

func (s *Store) SetChallengeEmbedding(ctx context.Context, id string, vec []float32) error {
	return s.setStructureEmbedding(ctx, tableChallenges, id, vec)
}

func (s *Store) SetApproachEmbedding(ctx context.Context, id string, vec []float32) error {
	return s.setStructureEmbedding(ctx, tableApproaches, id, vec)
}

func (s *Store) insertStructure(ctx context.Context, table string, st Structure) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, idea_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, table), st.ID, st.IdeaID, st.Content, now, now)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (s *Store) getStructure(ctx context.Context, table, id string) (*Structure, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, idea_id, content, embedding, created_at, updated_at
		FROM %s WHERE id = ?
	`, table), id)

	var (
		st  Structure
		emb sql.NullString
	)
	err := row.Scan(&st.ID, &st.IdeaID, &st.Content, &emb, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get from %s: %w", table, err)
	}
	if st.Embedding, err = unmarshalEmbedding(emb); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) updateStructureContent(ctx context.Context, table, id, content string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET content = ?, embedding = NULL, updated_at = ? WHERE id = ?
	`, table), content, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return checkFound(res, "update "+table)
}

func (s *Store) setStructureEmbedding(ctx context.Context, table, id string, vec []float32) error {
	data, err := marshalEmbedding(vec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET embedding = ?, updated_at = ? WHERE id = ?
	`, table), data, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set embedding on %s: %w", table, err)
	}
	return checkFound(res, "set embedding on "+table)
}
