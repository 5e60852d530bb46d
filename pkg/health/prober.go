package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"nimbus-hq/callisto/pkg/providerfactory"
	"nimbus-hq/callisto/pkg/providers"
	"nimbus-hq/callisto/pkg/telemetry/metrics"
)

// DefaultSchedule probes every five minutes.
const DefaultSchedule = "*/5 * * * *"

// ProberConfig configures the periodic health prober.
type ProberConfig struct {
	// Schedule is a standard cron expression controlling probe frequency.
	// Default: every 5 minutes.
	Schedule string

	// ProbeTimeout bounds a full probe sweep across all providers.
	// Default: 30 seconds.
	ProbeTimeout time.Duration

	// Collector receives health gauges and probe latencies.
	// Optional; probing works without metrics.
	Collector *metrics.Collector
}

// Prober periodically health-checks every adapter registered with a
// Manager and publishes the results. The most recent sweep is retained
// and served from memory so callers never block on network probes.
type Prober struct {
	manager   *providerfactory.Manager
	cron      *cron.Cron
	schedule  string
	timeout   time.Duration
	collector *metrics.Collector
	logger    *slog.Logger

	mu      sync.RWMutex
	latest  map[string]providers.HealthReport
	probed  time.Time
	running bool
}

// NewProber creates a prober over the given manager.
func NewProber(manager *providerfactory.Manager, cfg ProberConfig) *Prober {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 30 * time.Second
	}

	return &Prober{
		manager:   manager,
		cron:      cron.New(),
		schedule:  cfg.Schedule,
		timeout:   cfg.ProbeTimeout,
		collector: cfg.Collector,
		logger:    slog.Default().With("component", "health.prober"),
		latest:    make(map[string]providers.HealthReport),
	}
}

// Start validates the schedule, runs one immediate sweep, and begins
// periodic probing. It returns once the first sweep completes so the
// snapshot is populated before traffic relies on it.
func (p *Prober) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", p.schedule, err)
	}

	if _, err := p.cron.AddFunc(p.schedule, func() {
		p.runSweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule health probe: %w", err)
	}

	p.runSweep(ctx)

	p.cron.Start()

	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	p.logger.Info("health prober started",
		"schedule", p.schedule,
		"providers", p.manager.Count(),
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// runSweep probes every adapter and replaces the cached snapshot.
func (p *Prober) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	reports := p.manager.HealthSummary(sweepCtx)

	unhealthy := 0
	for name, report := range reports {
		if p.collector != nil {
			p.collector.RecordHealth(report)
		}
		if report.Status == providers.StatusUnhealthy {
			unhealthy++
			p.logger.Warn("provider unhealthy",
				"provider", name,
				"error", report.Error,
			)
		}
	}

	p.mu.Lock()
	p.latest = reports
	p.probed = time.Now()
	p.mu.Unlock()

	p.logger.Debug("health sweep completed",
		"providers", len(reports),
		"unhealthy", unhealthy,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Snapshot returns the most recent sweep results and the time it ran.
// The returned map is a copy and safe to mutate.
func (p *Prober) Snapshot() (map[string]providers.HealthReport, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]providers.HealthReport, len(p.latest))
	for name, report := range p.latest {
		out[name] = report
	}
	return out, p.probed
}

// Healthy reports whether every probed provider is currently healthy
// or degraded. It returns false when any provider is unhealthy or when
// no sweep has run yet.
func (p *Prober) Healthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.probed.IsZero() {
		return false
	}
	for _, report := range p.latest {
		if report.Status == providers.StatusUnhealthy {
			return false
		}
	}
	return true
}

// IsRunning returns true if the prober has been started.
func (p *Prober) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Stop halts scheduled probing and waits for an in-flight sweep.
func (p *Prober) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	done := p.cron.Stop()
	<-done.Done()
	p.running = false
	p.logger.Info("health prober stopped")
}

// NextRun returns the next scheduled sweep time, if any.
func (p *Prober) NextRun() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
