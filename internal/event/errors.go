package event

import (
	"errors"
	"fmt"
)

// HandlerError wraps a failure (or recovered panic) from a single handler
// during synchronous delivery. The bus logs it and keeps delivering to
// sibling handlers.
type HandlerError struct {
	Event     Name
	HandlerID string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s failed for %s: %v", e.HandlerID, e.Event, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// IsHandlerError reports whether err is (or wraps) a HandlerError.
func IsHandlerError(err error) bool {
	var he *HandlerError
	return errors.As(err, &he)
}
