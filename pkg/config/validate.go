package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// knownProviders lists the provider names this build ships adapters
// for. Register extends the factory at runtime, so unknown names here
// are a validation warning surface rather than definitive truth, but
// typos in config files are far more common than custom adapters.
var knownProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"local":     true,
	"auto":      true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

var validCacheBackends = map[string]bool{
	"memory": true,
	"sqlite": true,
}

// Validate checks the configuration for errors.
// It should be called after ApplyDefaults.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.DefaultProvider != "auto" && len(cfg.Providers) > 0 {
		if _, ok := cfg.Providers[cfg.DefaultProvider]; !ok && !knownProviders[cfg.DefaultProvider] {
			errs = append(errs, fmt.Sprintf(
				"default_provider %q is not a configured or known provider", cfg.DefaultProvider))
		}
	}
	if cfg.FallbackProvider == "auto" {
		errs = append(errs, "fallback_provider cannot be \"auto\"")
	}

	for name, pc := range cfg.Providers {
		if name == "" {
			errs = append(errs, "provider name cannot be empty")
			continue
		}
		if pc.BaseURL != "" {
			if _, err := url.Parse(pc.BaseURL); err != nil {
				errs = append(errs, fmt.Sprintf(
					"provider %q: invalid base_url %q: %v", name, pc.BaseURL, err))
			}
		}
		if pc.MaxRetries < 0 {
			errs = append(errs, fmt.Sprintf(
				"provider %q: max_retries cannot be negative", name))
		}
		if pc.RetryDelay < 0 {
			errs = append(errs, fmt.Sprintf(
				"provider %q: retry_delay cannot be negative", name))
		}
		if pc.TimeoutMultiplier < 0 {
			errs = append(errs, fmt.Sprintf(
				"provider %q: timeout_multiplier cannot be negative", name))
		}
	}

	if cfg.Health.Enabled {
		if _, err := cron.ParseStandard(cfg.Health.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf(
				"health: invalid schedule %q: %v", cfg.Health.Schedule, err))
		}
		if cfg.Health.ProbeTimeout <= 0 {
			errs = append(errs, "health: probe_timeout must be positive")
		}
	}

	if cfg.Cache.Enabled {
		if !validCacheBackends[cfg.Cache.Backend] {
			errs = append(errs, fmt.Sprintf(
				"cache: unknown backend %q (expected memory or sqlite)", cfg.Cache.Backend))
		}
		if cfg.Cache.Backend == "sqlite" && cfg.Cache.SQLitePath == "" {
			errs = append(errs, "cache: sqlite_path is required for the sqlite backend")
		}
		if cfg.Cache.MaxEntries < 0 {
			errs = append(errs, "cache: max_entries cannot be negative")
		}
	}

	if !validLogLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf(
			"logging: unknown level %q (expected debug, info, warn, or error)", cfg.Logging.Level))
	}
	if !validLogFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf(
			"logging: unknown format %q (expected json or text)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
