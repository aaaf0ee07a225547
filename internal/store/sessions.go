package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Session statuses.
const (
	SessionStatusActive   = "Active"
	SessionStatusArchived = "Archived"
)

// Message is one turn in an agent conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Session struct {
	ID        string
	UserID    string
	IdeaID    string
	Status    string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	messages, err := json.Marshal(sess.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	if sess.Messages == nil {
		messages = []byte("[]")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, idea_id, status, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.UserID, nullable(sess.IdeaID), sess.Status, string(messages), now, now)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, idea_id, status, messages, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	var (
		sess     Session
		ideaID   sql.NullString
		messages string
	)
	err := row.Scan(&sess.ID, &sess.UserID, &ideaID, &sess.Status, &messages, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess.IdeaID = fromNull(ideaID)
	if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	return &sess, nil
}

// AppendSessionMessage adds one message to the conversation log.
func (s *Store) AppendSessionMessage(ctx context.Context, id string, msg Message) error {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	messages, err := json.Marshal(append(sess.Messages, msg))
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET messages = ?, updated_at = ? WHERE id = ?
	`, string(messages), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return checkFound(res, "append message")
}

// ArchiveSession moves an Active session to Archived. Returns (false, nil)
// when the session exists but was already archived.
func (s *Store) ArchiveSession(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, SessionStatusArchived, time.Now().UTC(), id, SessionStatusActive)
	if err != nil {
		return false, fmt.Errorf("archive session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("archive session: rows affected: %w", err)
	}
	if n > 0 {
		return true, nil
	}
	if _, err := s.GetSession(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
