// Package tasks is the shared application service behind both the HTTP API
// and the RPC surface. It owns enqueue/inspect/delete/redrive semantics so
// the transports stay thin adapters.
package tasks
