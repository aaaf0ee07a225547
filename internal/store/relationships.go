package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Relationship struct {
	ID           string
	FromType     string
	FromID       string
	ToType       string
	ToID         string
	Relationship string
	Score        float64
	DiscoveredAt time.Time
	DiscoveredBy string
}

// UpsertRelationship records a discovered connection. Re-discovering the
// same endpoints updates the score and discovery metadata in place; the
// unique endpoint constraint guarantees no duplicate row. Returns true when
// a new row was inserted.
func (s *Store) UpsertRelationship(ctx context.Context, r Relationship) (bool, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relationships (id, from_type, from_id, to_type, to_id, relationship, score, discovered_at, discovered_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (from_type, from_id, to_type, to_id, relationship)
		DO UPDATE SET score = excluded.score,
		              discovered_at = excluded.discovered_at,
		              discovered_by = excluded.discovered_by
	`, r.ID, r.FromType, r.FromID, r.ToType, r.ToID, r.Relationship, r.Score, time.Now().UTC(), nullable(r.DiscoveredBy))
	if err != nil {
		return false, fmt.Errorf("upsert relationship: %w", err)
	}
	// SQLite reports 1 affected row for both insert and update paths, so
	// detect inserts by whether our candidate id won.
	var id string
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM relationships
		WHERE from_type = ? AND from_id = ? AND to_type = ? AND to_id = ? AND relationship = ?
	`, r.FromType, r.FromID, r.ToType, r.ToID, r.Relationship).Scan(&id)
	if err != nil {
		return false, fmt.Errorf("upsert relationship: readback: %w", err)
	}
	return id == r.ID, nil
}

// ListRelationshipsFrom returns connections discovered from one endpoint,
// strongest first.
func (s *Store) ListRelationshipsFrom(ctx context.Context, fromType, fromID string) ([]Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_type, from_id, to_type, to_id, relationship, score, discovered_at, discovered_by
		FROM relationships
		WHERE from_type = ? AND from_id = ?
		ORDER BY score DESC, id
	`, fromType, fromID)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	defer rows.Close()

	rels := []Relationship{}
	for rows.Next() {
		var (
			r     Relationship
			score sql.NullFloat64
			by    sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.FromType, &r.FromID, &r.ToType, &r.ToID, &r.Relationship, &score, &r.DiscoveredAt, &by); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		r.Score = score.Float64
		r.DiscoveredBy = fromNull(by)
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}
	return rels, nil
}

// CountRelationships returns the total relationship rows, used by tests to
// verify upsert idempotence.
func (s *Store) CountRelationships(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count relationships: %w", err)
	}
	return count, nil
}
