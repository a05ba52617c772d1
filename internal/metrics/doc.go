// Package metrics collects taskd's operational counters. Metrics are
// registered on a private Prometheus registry exposed via Handler for the
// HTTP /metrics route; Summary mirrors the same numbers as a plain snapshot
// for the API and RPC surfaces.
package metrics
