// Package health provides scheduled liveness probing for provider
// adapters.
//
// The Prober sweeps every adapter registered with a providerfactory
// Manager on a cron schedule, caches the latest reports in memory, and
// optionally publishes health gauges through the metrics collector.
// Serving status from the cached snapshot keeps readiness endpoints
// fast regardless of upstream API latency.
package health
