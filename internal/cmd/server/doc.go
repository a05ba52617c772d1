// Package serverrun boots a taskd instance: runtime, worker pool, and the
// HTTP and gRPC servers, wired to one shared tasks service.
package serverrun
