package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the store when no row matches the given key.
var ErrNotFound = errors.New("bookmark not found")

// AuthError means no authenticated user was present at call time.
// It blocks the operation entirely; nothing is persisted.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "not authenticated"
	}
	return "not authenticated: " + e.Reason
}

// ValidationError means the caller's input was rejected before any
// backend call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a backend rejection (policy violation,
// connectivity, ...). The backend's own message is preserved for display.
type PersistenceError struct {
	Op  string // "insert", "delete", "list"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SubscriptionError means the change feed failed to open or dropped.
// It is never fatal to the host view: the session degrades to its
// last-known snapshot instead.
type SubscriptionError struct {
	OwnerID string
	Err     error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription for owner %s failed: %v", e.OwnerID, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }
