// Package journal records release attempts and their outcomes. The journal
// is an optional collaborator: the pipeline itself persists nothing, but
// operators running fleets of releases want an audit trail of who released
// what, when, and whether it worked.
package journal

import (
	"context"
	"time"
)

// Attempt statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Entry describes one release attempt.
type Entry struct {
	ID        string
	Module    string
	Version   string
	Flavor    string
	Branch    string
	Commit    string
	Status    string
	Error     string
	StartedAt time.Time
	EndedAt   *time.Time
}

// Journal persists release attempts.
type Journal interface {
	// Begin records the start of a release attempt.
	Begin(ctx context.Context, entry Entry) error

	// Finish records the outcome of a release attempt. errMsg is empty on
	// success.
	Finish(ctx context.Context, id string, status string, errMsg string) error

	// Get returns a recorded attempt by id.
	Get(ctx context.Context, id string) (*Entry, error)

	// Close closes the journal connection.
	Close() error
}
