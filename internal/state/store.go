package state

import (
	"fmt"
	"sync"
	"time"
)

// Keyed is any entity with a stable numeric identity.
type Keyed interface {
	Key() int64
}

// Snapshot represents the latest complete collection available to the UI.
type Snapshot[T Keyed] struct {
	Items               []T
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store holds the latest full snapshot of one server-owned collection.
// Snapshots are replaced wholesale on every successful poll; there is no
// incremental merge, so entries absent from the latest poll are dropped.
type Store[T Keyed] struct {
	mu       sync.RWMutex
	snapshot Snapshot[T]
}

// Replace atomically swaps the visible collection with the given one.
func (s *Store[T]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Items = cloneItems(items)
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Fail records a poll failure. The previous items are kept so the UI shows
// stale data instead of blanking.
func (s *Store[T]) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = cloneItems(s.snapshot.Items)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Contains reports whether the latest snapshot still carries the given id.
// Selection reconciliation uses this to detect entities that disappeared
// between polls.
func (s *Store[T]) Contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.snapshot.Items {
		if item.Key() == id {
			return true
		}
	}
	return false
}

// Get returns the entity with the given id from the latest snapshot.
func (s *Store[T]) Get(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.snapshot.Items {
		if item.Key() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func cloneItems[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
