// Package metrics provides observability hooks for the navigation core.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never requires nil checks:
//
//	cache := sidebar.New(fetcher, sidebar.WithRecorder(recorder))
//
// PrometheusRecorder forwards every observation to client_golang collectors
// registered on a caller-supplied registry; HTTPHandler exposes that registry.
//
// Observed signals:
//   - fetch latency and outcome per resource kind (document, sidebar)
//   - sidebar cache lookups (hit, miss, dedup)
//   - stale asynchronous results discarded by a generation or liveness check
//   - navigations per route kind and final document outcomes
package metrics
