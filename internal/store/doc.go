// Package store journals engine statistics to SQLite.
//
// Each engine session gets one row in sessions, written the first time a
// snapshot for it is recorded. Snapshots are keyed by (session_id, seq), so
// recording the same snapshot twice is a no-op. Counters are stored as
// plain columns to keep ad hoc SQL over the journal simple.
//
// # Ordering
//
// Listings within a session are ordered by seq. Cross-session listings
// are ordered by taken_at, then session_id COLLATE BINARY, then seq.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000ms
//   - foreign_keys=ON
//   - One open connection (single writer)
package store
