package providers

import (
	"context"
	"log/slog"
	"time"
)

// Health probe budgets. A probe that answers but takes longer than the
// degraded threshold is reported degraded rather than healthy.
const (
	healthProbeBudget       = 10 * time.Second
	healthDegradedThreshold = 5 * time.Second
)

// RunHealthProbe executes probe under the health budget and synthesizes a
// HealthReport from the outcome. Probe failures are captured in the report;
// this function never panics or returns an error.
//
// When requireCredential is set and no API key is configured, the probe is
// skipped entirely and the report is unhealthy, so health checks on
// unconfigured providers stay cheap and deterministic.
func (a *HTTPAdapter) RunHealthProbe(ctx context.Context, requireCredential bool, probe func(ctx context.Context) error) HealthReport {
	report := HealthReport{
		Provider:              a.name,
		CredentialsConfigured: a.CredentialsConfigured(),
		Metrics:               a.metrics.Snapshot(),
	}

	if requireCredential && !a.CredentialsConfigured() {
		report.Status = StatusUnhealthy
		report.Error = "no API key configured"
		return report
	}

	probeCtx, cancel := context.WithTimeout(ctx, healthProbeBudget)
	defer cancel()

	start := time.Now()
	err := probe(probeCtx)
	latency := time.Since(start)
	report.LatencyMS = latency.Milliseconds()

	if err != nil {
		report.Status = StatusUnhealthy
		report.Error = err.Error()
		slog.Warn("health probe failed",
			"provider", a.name,
			"latency", latency,
			"error", err,
		)
		return report
	}

	if latency > healthDegradedThreshold {
		report.Status = StatusDegraded
	} else {
		report.Status = StatusHealthy
	}

	slog.Debug("health probe completed",
		"provider", a.name,
		"status", report.Status,
		"latency", latency,
	)

	return report
}
