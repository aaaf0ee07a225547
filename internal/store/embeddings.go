package store

import (
	"context"
	"database/sql"
	"fmt"
)

// EmbeddedRecord is one row in an embedding space: the record id, the idea
// it belongs to, and its vector. Objectives stand for themselves, so their
// IdeaID equals ID.
type EmbeddedRecord struct {
	ID        string
	IdeaID    string
	Embedding []float32
}

// ListSummaryEmbeddings returns embedded summaries of un-archived ideas.
func (s *Store) ListSummaryEmbeddings(ctx context.Context) ([]EmbeddedRecord, error) {
	return s.listContentEmbeddings(ctx, "summaries")
}

// ListChallengeEmbeddings returns embedded challenges of un-archived ideas.
func (s *Store) ListChallengeEmbeddings(ctx context.Context) ([]EmbeddedRecord, error) {
	return s.listContentEmbeddings(ctx, tableChallenges)
}

// ListApproachEmbeddings returns embedded approaches of un-archived ideas.
func (s *Store) ListApproachEmbeddings(ctx context.Context) ([]EmbeddedRecord, error) {
	return s.listContentEmbeddings(ctx, tableApproaches)
}

func (s *Store) listContentEmbeddings(ctx context.Context, table string) ([]EmbeddedRecord, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT t.id, t.idea_id, t.embedding
		FROM %s t JOIN ideas i ON i.id = t.idea_id
		WHERE t.embedding IS NOT NULL AND i.status != ?
		ORDER BY t.id
	`, table), IdeaStatusArchived)
	if err != nil {
		return nil, fmt.Errorf("list %s embeddings: %w", table, err)
	}
	defer rows.Close()
	return scanEmbeddedRecords(rows)
}

// ListObjectiveEmbeddings returns embedded active objectives.
func (s *Store) ListObjectiveEmbeddings(ctx context.Context) ([]EmbeddedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, id, embedding
		FROM objectives
		WHERE embedding IS NOT NULL AND status = ?
		ORDER BY id
	`, ObjectiveStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list objective embeddings: %w", err)
	}
	defer rows.Close()
	return scanEmbeddedRecords(rows)
}

func scanEmbeddedRecords(rows *sql.Rows) ([]EmbeddedRecord, error) {
	var out []EmbeddedRecord
	for rows.Next() {
		var rec EmbeddedRecord
		var emb sql.NullString
		if err := rows.Scan(&rec.ID, &rec.IdeaID, &emb); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		vec, err := unmarshalEmbedding(emb)
		if err != nil {
			return nil, err
		}
		rec.Embedding = vec
		out = append(out, rec)
	}
	return out, rows.Err()
}
