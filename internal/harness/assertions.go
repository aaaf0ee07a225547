package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/justingibbs/crabgrass/internal/queue"
)

// Verify checks every assertion against the run's final state and returns
// all failures joined into one error.
func (r *Result) Verify(assertions []Assertion) error {
	ctx := context.Background()
	var failures []error
	for i, a := range assertions {
		if err := r.verifyOne(ctx, a); err != nil {
			failures = append(failures, fmt.Errorf("assertion %d (%s): %w", i+1, a.Type, err))
		}
	}
	return errors.Join(failures...)
}

func (r *Result) verifyOne(ctx context.Context, a Assertion) error {
	switch a.Type {
	case "event_count":
		got := 0
		for _, e := range r.Trace {
			if e.Event == a.Event {
				got++
			}
		}
		if got != a.Count {
			return fmt.Errorf("event %s: want %d, got %d", a.Event, a.Count, got)
		}
		return nil

	case "queue_count":
		counts, err := r.stack.queues.Counts(ctx, queue.Name(a.Queue))
		if err != nil {
			return err
		}
		if got := counts[a.Status]; got != a.Count {
			return fmt.Errorf("queue %s %s: want %d, got %d", a.Queue, a.Status, a.Count, got)
		}
		return nil

	case "notification_count":
		userID := r.resolve(a.User)
		notes, err := r.stack.store.ListNotifications(ctx, userID, false)
		if err != nil {
			return err
		}
		got := 0
		for _, n := range notes {
			if a.NotificationType == "" || n.Type == a.NotificationType {
				got++
			}
		}
		if got != a.Count {
			return fmt.Errorf("notifications for %s (type %q): want %d, got %d",
				a.User, a.NotificationType, a.Count, got)
		}
		return nil

	case "relationship_count":
		got, err := r.stack.store.CountRelationships(ctx)
		if err != nil {
			return err
		}
		if got != a.Count {
			return fmt.Errorf("relationships: want %d, got %d", a.Count, got)
		}
		return nil

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}
