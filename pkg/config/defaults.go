package config

import "time"

// Default values applied when the configuration file omits a field.
const (
	DefaultProviderName     = "openai"
	DefaultFallbackProvider = "openai"
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = time.Second
	DefaultTimeout          = 30 * time.Second
	DefaultHealthSchedule   = "*/5 * * * *"
	DefaultProbeTimeout     = 30 * time.Second
	DefaultCacheBackend     = "memory"
	DefaultCacheMaxEntries  = 10000
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsNamespace = "callisto"
)

// ApplyDefaults fills in zero-valued fields with default values.
// It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = DefaultProviderName
	}
	if cfg.FallbackProvider == "" {
		cfg.FallbackProvider = DefaultFallbackProvider
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for name, pc := range cfg.Providers {
		if pc.MaxRetries == 0 {
			pc.MaxRetries = DefaultMaxRetries
		}
		if pc.RetryDelay == 0 {
			pc.RetryDelay = DefaultRetryDelay
		}
		if pc.TimeoutMultiplier == 0 {
			pc.TimeoutMultiplier = 1.0
		}
		if pc.DefaultTimeout == 0 {
			pc.DefaultTimeout = DefaultTimeout
		}
		cfg.Providers[name] = pc
	}

	if cfg.Health.Schedule == "" {
		cfg.Health.Schedule = DefaultHealthSchedule
	}
	if cfg.Health.ProbeTimeout == 0 {
		cfg.Health.ProbeTimeout = DefaultProbeTimeout
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// NewDefaultConfig returns a configuration with all defaults applied
// and no providers configured.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{RedactSecrets: true},
	}
	ApplyDefaults(cfg)
	return cfg
}
