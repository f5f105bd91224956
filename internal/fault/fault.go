package fault

import "fmt"

// ValidationError means the input is malformed or inconsistent
// (quantity exceeds stock at creation time, missing rejection reason, ...).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PermissionError means the actor lacks the role or ownership
// required for the operation.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }

func Permission(format string, args ...any) error {
	return &PermissionError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError means the operation was attempted from an illegal
// source state, e.g. approving an already-approved reservation.
type StateConflictError struct {
	Msg string
}

func (e *StateConflictError) Error() string { return e.Msg }

func StateConflict(format string, args ...any) error {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientInventoryError means a decrement would take the listing
// quantity below zero. Carries what was asked versus what remains.
type InsufficientInventoryError struct {
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d, available %d", e.Requested, e.Available)
}
