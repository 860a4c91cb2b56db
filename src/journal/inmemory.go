package journal

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryJournal is an in-process Journal for local runs and tests.
type InMemoryJournal struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

var _ Journal = (*InMemoryJournal)(nil)

// NewInMemoryJournal creates an empty in-memory journal.
func NewInMemoryJournal() *InMemoryJournal {
	return &InMemoryJournal{entries: make(map[string]*Entry)}
}

// Begin records the start of a release attempt.
func (j *InMemoryJournal) Begin(ctx context.Context, entry Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, exists := j.entries[entry.ID]; exists {
		return nil
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now()
	}
	entry.Status = StatusRunning
	j.entries[entry.ID] = &entry
	return nil
}

// Finish records the outcome of a release attempt.
func (j *InMemoryJournal) Finish(ctx context.Context, id string, status string, errMsg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry, ok := j.entries[id]
	if !ok {
		return fmt.Errorf("release attempt not found: %s", id)
	}
	now := time.Now()
	entry.Status = status
	entry.Error = errMsg
	entry.EndedAt = &now
	return nil
}

// Get returns a recorded attempt by id.
func (j *InMemoryJournal) Get(ctx context.Context, id string) (*Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry, ok := j.entries[id]
	if !ok {
		return nil, fmt.Errorf("release attempt not found: %s", id)
	}
	copied := *entry
	return &copied, nil
}

// List returns all recorded attempts in unspecified order.
func (j *InMemoryJournal) List() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Entry, 0, len(j.entries))
	for _, entry := range j.entries {
		out = append(out, *entry)
	}
	return out
}

// Close is a no-op for the in-memory journal.
func (j *InMemoryJournal) Close() error {
	return nil
}
