// Package metrics provides the Prometheus instruments for the adapter
// layer: per-provider request, error, retry and token counters, call and
// probe latency histograms, and a health gauge.
//
// Instruments live in a private registry by default so tests and multiple
// collectors never collide on the global one; the embedding application
// mounts Handler() wherever it serves /metrics.
package metrics
