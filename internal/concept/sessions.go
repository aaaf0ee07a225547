package concept

import (
	"context"

	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/store"
)

// Sessions owns agent conversations. A session may be attached to an idea,
// which makes its user a contributor of that idea.
type Sessions struct {
	deps
}

// Start opens a session and publishes session.started.
func (c *Sessions) Start(ctx context.Context, userID, ideaID string) (*store.Session, error) {
	if err := requireNonEmpty("user_id", userID); err != nil {
		return nil, err
	}
	if ideaID != "" {
		if _, err := c.store.GetIdea(ctx, ideaID); err != nil {
			return nil, wrapStore("start session", "idea", ideaID, err)
		}
	}

	sess := store.Session{
		ID:     c.ids.NewID(),
		UserID: userID,
		IdeaID: ideaID,
		Status: store.SessionStatusActive,
	}
	if err := c.store.CreateSession(ctx, sess); err != nil {
		return nil, &StorageError{Op: "start session", Err: err}
	}

	c.publish(ctx, event.SessionStartedPayload{SessionID: sess.ID, UserID: userID, IdeaID: ideaID})
	return &sess, nil
}

// Get returns one session.
func (c *Sessions) Get(ctx context.Context, sessionID string) (*store.Session, error) {
	sess, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, wrapStore("get session", "session", sessionID, err)
	}
	return sess, nil
}

// AppendMessage adds one turn to the conversation log. No event: message
// traffic is not a lifecycle change.
func (c *Sessions) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	if err := requireNonEmpty("content", content); err != nil {
		return err
	}
	if err := c.store.AppendSessionMessage(ctx, sessionID, store.Message{Role: role, Content: content}); err != nil {
		return wrapStore("append message", "session", sessionID, err)
	}
	return nil
}

// End archives a session and publishes session.ended. Ending an archived
// session is a no-op and publishes nothing.
func (c *Sessions) End(ctx context.Context, sessionID string) (*store.Session, error) {
	transitioned, err := c.store.ArchiveSession(ctx, sessionID)
	if err != nil {
		return nil, wrapStore("end session", "session", sessionID, err)
	}
	sess, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, wrapStore("end session", "session", sessionID, err)
	}

	if transitioned {
		c.publish(ctx, event.SessionEndedPayload{SessionID: sessionID, UserID: sess.UserID})
	}
	return sess, nil
}
