package config

import "time"

// Config is the root configuration structure.
// It is typically loaded from a YAML file with environment variable
// overrides applied on top.
type Config struct {
	// DefaultProvider names the provider used when callers do not
	// request one explicitly. "auto" selects by credential detection.
	DefaultProvider string `yaml:"default_provider"`

	// FallbackProvider names the provider used when the default
	// provider cannot serve a capability (e.g. embeddings).
	FallbackProvider string `yaml:"fallback_provider"`

	// Providers holds per-provider connection settings keyed by
	// provider name (e.g. "openai", "anthropic", "local").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Health configures the periodic health prober.
	Health HealthConfig `yaml:"health"`

	// Cache configures the embedding cache.
	Cache CacheConfig `yaml:"cache"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metric exposure.
	Metrics MetricsConfig `yaml:"metrics"`
}

// ProviderConfig holds connection and retry settings for one provider.
type ProviderConfig struct {
	// APIKey authenticates requests. Leave empty to read the
	// provider's conventional environment variable instead.
	APIKey string `yaml:"api_key"`

	// OrgID is an optional organization identifier (OpenAI only).
	OrgID string `yaml:"org_id"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model is the default model when requests omit one.
	Model string `yaml:"model"`

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the base backoff delay. Doubled on each retry.
	RetryDelay time.Duration `yaml:"retry_delay"`

	// TimeoutMultiplier scales per-request timeouts.
	TimeoutMultiplier float64 `yaml:"timeout_multiplier"`

	// DefaultTimeout applies when a request carries no timeout.
	DefaultTimeout time.Duration `yaml:"default_timeout"`
}

// HealthConfig configures the health prober.
type HealthConfig struct {
	// Enabled turns periodic probing on.
	Enabled bool `yaml:"enabled"`

	// Schedule is a standard cron expression.
	Schedule string `yaml:"schedule"`

	// ProbeTimeout bounds one full sweep across all providers.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// CacheConfig configures the embedding cache.
type CacheConfig struct {
	// Enabled turns embedding caching on.
	Enabled bool `yaml:"enabled"`

	// Backend selects the store: "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// MaxEntries bounds the memory store.
	MaxEntries int `yaml:"max_entries"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`

	// RedactSecrets strips credentials from log output.
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`
}
