package types

import (
	"fmt"
)

// ErrNotFound indicates a referenced student, company, application or requirement is absent.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ErrConflict indicates the write would duplicate an existing record.
type ErrConflict struct {
	Entity  string
	Message string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Message)
}

// ErrInvalidState indicates a status value outside its enumerated set.
// It is always returned before any write happens.
type ErrInvalidState struct {
	Field string
	Value string
}

func (e *ErrInvalidState) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// ErrAtomicity indicates a transactional unit failed and was rolled back as a whole.
// Callers retry the entire unit, never a single step of it.
type ErrAtomicity struct {
	Op  string
	Err error
}

func (e *ErrAtomicity) Error() string {
	return fmt.Sprintf("%s failed and was rolled back: %v", e.Op, e.Err)
}

func (e *ErrAtomicity) Unwrap() error {
	return e.Err
}
