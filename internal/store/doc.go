// Package store provides the SQLite admission journal.
//
// The journal is append-only and records, per reasoning session:
//   - Sessions: id, random seed and the parameters the session ran with
//   - Admissions: every task submitted to memory, with its origin label
//
// # Ordering
//
// All ordering uses seq INTEGER, the engine's logical clock, never wall
// time. Every query orders by seq ASC so that two runs with the same seed
// read back identically.
//
// # Idempotency
//
// Admissions are keyed by (session_id, seq). Writing the same admission
// twice is a no-op (ON CONFLICT DO NOTHING), so a flush can be retried.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
