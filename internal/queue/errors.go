package queue

import (
	"errors"
	"fmt"
)

// QueueProcessingError reports an item that exhausted its attempt budget
// and was parked as failed.
type QueueProcessingError struct {
	Queue    Name
	ItemID   string
	Attempts int
	Err      error
}

func (e *QueueProcessingError) Error() string {
	return fmt.Sprintf("queue %s: item %s failed after %d attempts: %v",
		e.Queue, e.ItemID, e.Attempts, e.Err)
}

func (e *QueueProcessingError) Unwrap() error { return e.Err }

// IsQueueProcessingError reports whether err is (or wraps) a
// QueueProcessingError.
func IsQueueProcessingError(err error) bool {
	var qe *QueueProcessingError
	return errors.As(err, &qe)
}
