package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nimbus-hq/callisto/pkg/providers"
)

// Config controls metric naming and histogram resolution.
type Config struct {
	// Namespace prefixes every metric name.
	Namespace string

	// Subsystem is the second naming component.
	Subsystem string

	// LatencyBuckets are the histogram buckets for call latency in
	// seconds. LLM calls are slow; the defaults run from 50ms to 2min.
	LatencyBuckets []float64
}

// DefaultLatencyBuckets suit LLM workloads: completions routinely take
// seconds, embeddings tens of milliseconds.
var DefaultLatencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// Collector owns the Prometheus instruments for the adapter layer and the
// registry they live in.
//
// Metrics:
//   - callisto_provider_requests_total{provider, op}
//   - callisto_provider_errors_total{provider, op, error_type}
//   - callisto_provider_retries_total{provider, op}
//   - callisto_provider_tokens_total{provider, kind}
//   - callisto_provider_latency_seconds{provider, op}
//   - callisto_provider_health{provider}
//   - callisto_provider_probe_latency_seconds{provider}
type Collector struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	errors       *prometheus.CounterVec
	retries      *prometheus.CounterVec
	tokens       *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	health       *prometheus.GaugeVec
	probeLatency *prometheus.HistogramVec
}

// NewCollector creates and registers the adapter-layer instruments. A nil
// registry gets a fresh private one, keeping tests isolated from the global
// default registry.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "callisto"
	}
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultLatencyBuckets
	}

	c := &Collector{
		registry: registry,

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_requests_total",
				Help:      "Total attempts issued to each provider, retries included",
			},
			[]string{"provider", "op"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_errors_total",
				Help:      "Total failed attempts by error type",
			},
			[]string{"provider", "op", "error_type"},
		),

		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_retries_total",
				Help:      "Total delayed retries performed",
			},
			[]string{"provider", "op"},
		),

		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_tokens_total",
				Help:      "Cumulative token usage by kind (prompt, completion)",
			},
			[]string{"provider", "kind"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_latency_seconds",
				Help:      "Provider call latency in seconds",
				Buckets:   cfg.LatencyBuckets,
			},
			[]string{"provider", "op"},
		),

		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0.5=degraded, 0=unhealthy)",
			},
			[]string{"provider"},
		),

		probeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_probe_latency_seconds",
				Help:      "Health probe latency in seconds",
				Buckets:   cfg.LatencyBuckets,
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		c.requests,
		c.errors,
		c.retries,
		c.tokens,
		c.latency,
		c.health,
		c.probeLatency,
	)

	return c
}

// Registry returns the underlying registry for callers that register their
// own instruments next to the adapter-layer ones.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordCall records one completed call with its latency.
func (c *Collector) RecordCall(provider, op string, latency time.Duration) {
	c.requests.WithLabelValues(provider, op).Inc()
	c.latency.WithLabelValues(provider, op).Observe(latency.Seconds())
}

// RecordError records one failed attempt.
func (c *Collector) RecordError(provider, op, errorType string) {
	c.errors.WithLabelValues(provider, op, errorType).Inc()
}

// RecordRetry records one delayed retry.
func (c *Collector) RecordRetry(provider, op string) {
	c.retries.WithLabelValues(provider, op).Inc()
}

// RecordUsage accumulates token usage from a successful call.
func (c *Collector) RecordUsage(provider string, usage providers.TokenUsage) {
	c.tokens.WithLabelValues(provider, "prompt").Add(float64(usage.PromptTokens))
	c.tokens.WithLabelValues(provider, "completion").Add(float64(usage.CompletionTokens))
}

// RecordHealth records a probe outcome.
func (c *Collector) RecordHealth(report providers.HealthReport) {
	var value float64
	switch report.Status {
	case providers.StatusHealthy:
		value = 1
	case providers.StatusDegraded:
		value = 0.5
	}
	c.health.WithLabelValues(report.Provider).Set(value)
	c.probeLatency.WithLabelValues(report.Provider).
		Observe(float64(report.LatencyMS) / 1000)
}

// CallObserver returns an observer that mirrors adapter request-path events
// into this collector's instruments. Install it on an adapter with
// SetCallObserver so completions and embeddings feed the requests, errors,
// retries, tokens, and latency series.
func (c *Collector) CallObserver() providers.CallObserver {
	return callObserver{c}
}

type callObserver struct {
	c *Collector
}

func (o callObserver) ObserveCall(provider, op string, latency time.Duration) {
	o.c.RecordCall(provider, op, latency)
}

func (o callObserver) ObserveError(provider, op string, err error) {
	o.c.RecordError(provider, op, ErrorType(err))
}

func (o callObserver) ObserveRetry(provider, op string) {
	o.c.RecordRetry(provider, op)
}

func (o callObserver) ObserveUsage(provider string, usage providers.TokenUsage) {
	o.c.RecordUsage(provider, usage)
}

// ErrorType labels an error for the errors counter using the typed
// taxonomy.
func ErrorType(err error) string {
	switch err.(type) {
	case *providers.TimeoutError:
		return "timeout"
	case *providers.TransientError:
		return "transient"
	case *providers.PermanentError:
		return "permanent"
	case *providers.CapabilityError:
		return "capability"
	case *providers.ParseError:
		return "parse"
	case *providers.RetriesExhaustedError:
		return "retries_exhausted"
	default:
		return "other"
	}
}
