package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a missing row, including rows owned by a different
	// user. Ownership mismatches deliberately look identical to absence so
	// the existence of other users' sessions is never leaked.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a violated exclusivity constraint: the user already
	// has an active session.
	ErrConflict = errors.New("active session already exists")

	// ErrInvalidState marks a transition attempted on a session that is not
	// in the required state, e.g. ending an already-completed session.
	ErrInvalidState = errors.New("invalid session state")

	// ErrTransient marks a timeout or temporary store unavailability.
	// Callers may retry with backoff; every other kind is terminal.
	ErrTransient = errors.New("transient store failure")
)

// uniqueViolation reports whether err is a SQLite unique-constraint failure.
// The modernc driver surfaces constraint errors as text only.
func uniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// transient reports whether err looks like a retryable store condition:
// a cancelled/expired context deadline or SQLITE_BUSY contention.
func transient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// wrapStoreErr tags transient failures with ErrTransient, preserving the
// original error text, and wraps everything else verbatim.
func wrapStoreErr(op string, err error) error {
	if transient(err) {
		return fmt.Errorf("%s: %v: %w", op, err, ErrTransient)
	}
	return fmt.Errorf("%s: %w", op, err)
}
