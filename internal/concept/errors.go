package concept

import (
	"errors"
	"fmt"

	"github.com/justingibbs/crabgrass/internal/store"
)

// ValidationError rejects an action before any storage write. Field names
// the offending argument.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError identifies a missing concept instance by kind and id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// IsNotFoundError reports whether err is (or wraps) a NotFoundError.
func IsNotFoundError(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// StorageError wraps an unexpected database failure during an action.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// wrapStore translates a store error into the taxonomy: ErrNotFound becomes
// a NotFoundError for (kind, id), anything else a StorageError for op.
func wrapStore(op, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return &StorageError{Op: op, Err: err}
}
