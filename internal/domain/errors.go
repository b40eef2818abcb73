package domain

import (
	"errors"
	"fmt"
)

// Error kinds for the session operations. Call sites wrap a kind with a
// message via NewError/Errorf; the transport layer maps kinds to HTTP
// statuses with errors.Is.
var (
	// ErrInvalidInput flags malformed or out-of-range fields (empty name,
	// unknown option, stale question).
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict flags operations incompatible with the current session
	// status (starting twice, joining after start, duplicate name).
	ErrConflict = errors.New("conflict")
	// ErrForbidden flags a non-host attempting a host-only action.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound flags a reference to a player not present in the session.
	ErrNotFound = errors.New("not found")
	// ErrInternal flags server-side misconfiguration, e.g. an empty catalog.
	ErrInternal = errors.New("internal error")
)

// NewError wraps kind with a human-readable message.
func NewError(kind error, message string) error {
	return fmt.Errorf("%s: %w", message, kind)
}

// Errorf wraps kind with a formatted message.
func Errorf(kind error, format string, args ...any) error {
	return NewError(kind, fmt.Sprintf(format, args...))
}
