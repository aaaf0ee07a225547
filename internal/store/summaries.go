package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Summary struct {
	ID        string
	IdeaID    string
	Content   string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetSummary returns one summary or ErrNotFound.
func (s *Store) GetSummary(ctx context.Context, id string) (*Summary, error) {
	return s.scanSummary(s.db.QueryRowContext(ctx, `
		SELECT id, idea_id, content, embedding, created_at, updated_at
		FROM summaries WHERE id = ?
	`, id))
}

// GetSummaryByIdea returns the idea's summary or ErrNotFound.
func (s *Store) GetSummaryByIdea(ctx context.Context, ideaID string) (*Summary, error) {
	return s.scanSummary(s.db.QueryRowContext(ctx, `
		SELECT id, idea_id, content, embedding, created_at, updated_at
		FROM summaries WHERE idea_id = ?
	`, ideaID))
}

func (s *Store) scanSummary(row *sql.Row) (*Summary, error) {
	var (
		sum Summary
		emb sql.NullString
	)
	err := row.Scan(&sum.ID, &sum.IdeaID, &sum.Content, &emb, &sum.CreatedAt, &sum.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	if sum.Embedding, err = unmarshalEmbedding(emb); err != nil {
		return nil, err
	}
	return &sum, nil
}

// UpdateSummaryContent replaces the content and clears the stale embedding;
// the embedding handler rebuilds it from the new text.
func (s *Store) UpdateSummaryContent(ctx context.Context, id, content string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE summaries SET content = ?, embedding = NULL, updated_at = ? WHERE id = ?
	`, content, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update summary: %w", err)
	}
	return checkFound(res, "update summary")
}

// SetSummaryEmbedding stores the vector for a summary.
func (s *Store) SetSummaryEmbedding(ctx context.Context, id string, vec []float32) error {
	data, err := marshalEmbedding(vec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE summaries SET embedding = ?, updated_at = ? WHERE id = ?
	`, data, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set summary embedding: %w", err)
	}
	return checkFound(res, "set summary embedding")
}
