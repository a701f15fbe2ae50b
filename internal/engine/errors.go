package engine

import (
	"errors"

	"evreserve/internal/store"
)

// Error taxonomy surfaced to the transport layer. All are client-input
// failures with no retry semantics: every mutating operation either
// fully commits or fully rejects.
var (
	// ErrInvalidWindow marks a malformed or past time range.
	ErrInvalidWindow = errors.New("invalid time window")
	// ErrNotFound marks an absent station, connector, or session. It is
	// the store's sentinel so lookups wrap straight through.
	ErrNotFound = store.ErrNotFound
	// ErrConflict marks an unavailable connector or overlapping window.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition marks a lifecycle rule violation.
	ErrInvalidTransition = errors.New("invalid transition")
)
