// Package store provides SQLite-backed persistence for IR graph snapshots.
//
// A snapshot is the canonical JSON form of an ir.Context (see ir.Snapshot).
// Snapshots are content-addressed by ir.SnapshotHash, so saving the same
// graph twice is a no-op. Each saved snapshot also indexes its operators by
// name and fingerprint, which lets callers find every snapshot that contains
// a given operator.
//
// # Deterministic Query Results
//
//   - All list queries order by the logical seq column, then id COLLATE BINARY
//   - Timestamps are never stored or used for ordering
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
