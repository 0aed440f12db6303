// Package state provides thread-safe snapshot stores for the dispatch
// application.
//
// # Overview
//
// This package implements a generic, thread-safe store for sharing polled
// collections (couriers, deliveries, products, users, stats) between the
// background pollers and the UI. It acts as the coordination point where
// polling updates meet UI rendering.
//
// # Architecture
//
// The package follows a producer-consumer pattern:
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌─────────────────┐
//	│ ActiveCouriers │            │                 │
//	│      ↓         │            │                 │
//	│ store.Replace()│───────────→│ store.Snapshot()│
//	│      ↓         │  (mutex)   │      ↓          │
//	│  repeat...     │            │  render UI      │
//	└────────────────┘            └─────────────────┘
//
// The Store mediates between these independent goroutines, ensuring:
//   - Atomic replacement (no partial/torn reads, no merging)
//   - No data races (mutex-protected access)
//   - Immutable snapshots (defensive copying)
//
// # Core Types
//
// Store[T]:
//   - Thread-safe container for the latest polled collection
//   - T must implement Keyed so membership lookups work by id
//   - Single writer (poller), multiple readers (UI refresh loop)
//
// Snapshot[T]:
//   - Immutable view of the collection at a point in time
//   - Contains items, timestamp, last error, and the consecutive
//     failure count behind IsOffline
//
// # Replacement Semantics
//
// Replace swaps the entire collection: entries absent from the new payload
// are gone, entries present are taken verbatim. There is no per-item merging
// and no tombstoning. Fail keeps the previous items untouched, records the
// error, and increments the consecutive-failure count:
//
//	// Success case: Replace entire snapshot
//	store.Replace(items)
//	→ snapshot.Items = items
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Error case: Keep old data, record error
//	store.Fail(err)
//	→ snapshot.Items = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// This ensures the UI always has the most recent successful data to display,
// while also being informed of polling failures. Two consecutive failures
// flip IsOffline, which the header renders as the offline indicator.
//
// # Defensive Copying
//
// Both Replace and Snapshot clone the item slice so the UI and the pollers
// never share a mutable backing array. The cost is small (at most a few
// hundred rows per collection) and much simpler than alternative
// coordination strategies.
//
// # Testing Considerations
//
// The Store is safe to construct with zero value:
//
//	store := &state.Store[api.Courier]{}  // Ready to use immediately
//
// Snapshot() returns a zero Snapshot if never updated, and updates are
// atomic and immediately visible.
//
// # Design Rationale
//
// This package intentionally avoids:
//   - Channels (mutex is simpler for single writer/multiple readers)
//   - Incremental updates (full snapshot replacement is easier)
//   - Versioning/history (only the latest state matters)
//   - Pub/sub (UI polls snapshots on its own schedule)
//
// The design prioritizes simplicity and correctness over maximum
// performance, which is appropriate for a single-operator dashboard.
package state
