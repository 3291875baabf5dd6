// Package store provides the SQLite-backed history of gogreen runs.
//
// Each generate invocation writes one row to runs and one row per scheduled
// commit to events, including dry runs. The ledger is append-only apart
// from closing a run (FinishRun) and flagging events as committed.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Queries that return lists order by started_at then id (runs) or seq
// (events) so output is stable.
package store
