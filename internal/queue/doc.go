// Package queue implements taskd's task queue: the Task record, the Backend
// storage contract, and its two implementations (durable SQLite, volatile
// in-memory).
//
// # Lifecycle
//
// A task is created by Enqueue in status "pending" with attempts=0. A worker
// claims it via Dequeue, which atomically selects the oldest pending task
// (FIFO by id) and moves it to "processing"; the select and the transition
// are one mutual-exclusion unit, so no two concurrent callers can claim the
// same task. The claim is then resolved exactly one way:
//
//   - MarkComplete: terminal "completed", sets completed_at and result
//   - MarkFailed: increments attempts, then either re-queues the task as
//     "pending" or, once attempts reaches the retry limit, parks it as
//     terminal "failed" with last_error recorded
//
// A failed task can be returned to "pending" by Redrive, which clears
// last_error but keeps the attempt count. Delete removes a task
// unconditionally from any state.
//
// # Backends
//
// SQLiteQueue persists tasks in a single database file with an indexed
// status column; all state survives process restarts, but opening a new
// backend recreates an empty schema (a deliberate design choice — see
// OpenSQLite). MemoryQueue offers identical external behavior without
// persistence, for tests and disposable deployments.
//
// Delivery is at-least-once; handlers are expected to be idempotent.
package queue
