// Package worker runs taskd's execution units: a fixed pool of long-lived
// goroutines that poll the queue backend, dispatch claimed tasks to
// registered handlers, and report outcomes back through the retry state
// machine. Handler invocation is a blocking call from the pool's point of
// view; a per-attempt timeout (when configured) bounds how long a worker
// stays occupied by a hung handler.
package worker
