package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validation errors — malformed input, refused before anything is persisted.
var (
	ErrNoRatedCategories = errors.New("review must rate at least one category")
	ErrConfirmRequired   = errors.New("deleting a guide cascades to its reviews; pass confirm=true")
	ErrInvalidCredential = errors.New("invalid username or password")
)

// NotFoundError marks operations referencing an entity id that does not exist.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StateConflictError marks operations invalid for the entity's current
// lifecycle state. Current is included for caller diagnostics.
type StateConflictError struct {
	Entity    string
	Current   string
	Attempted string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s %s in state %q", e.Attempted, e.Entity, e.Current)
}

// IsStateConflict reports whether err is (or wraps) a StateConflictError.
func IsStateConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}
