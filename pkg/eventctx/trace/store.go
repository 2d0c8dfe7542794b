// Package trace provides persistent storage of per-component trace entries
// for event-context diagnostics.
package trace

import (
	"errors"
	"time"
)

// Store persists the locations visited by event contexts.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records that a context visited a location.
	// Entries for one context are ordered by append time.
	Append(contextID, location string) error

	// List returns all entries for a context, ordered by sequence.
	// Returns empty slice (not error) if the context has no entries.
	List(contextID string) ([]Entry, error)

	// DeleteContext removes all entries for a context.
	// Returns nil if the context has no entries.
	DeleteContext(contextID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Entry is one recorded visit of a component location.
type Entry struct {
	ContextID  string
	Sequence   int
	Location   string
	RecordedAt time.Time
}

// Sentinel errors for trace store operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("trace store closed")
)
