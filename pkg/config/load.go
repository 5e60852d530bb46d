package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CALLISTO_SECTION_FIELD (e.g., CALLISTO_HEALTH_SCHEDULE).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format CALLISTO_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CALLISTO_DEFAULT_PROVIDER"); val != "" {
		cfg.DefaultProvider = val
	}
	if val := os.Getenv("CALLISTO_FALLBACK_PROVIDER"); val != "" {
		cfg.FallbackProvider = val
	}

	// Per-provider overrides for the built-in provider names.
	applyProviderEnvOverrides(cfg, "openai")
	applyProviderEnvOverrides(cfg, "anthropic")
	applyProviderEnvOverrides(cfg, "local")

	// Health overrides
	if val := os.Getenv("CALLISTO_HEALTH_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Health.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_HEALTH_SCHEDULE"); val != "" {
		cfg.Health.Schedule = val
	}
	if val := os.Getenv("CALLISTO_HEALTH_PROBE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Health.ProbeTimeout = d
		}
	}

	// Cache overrides
	if val := os.Getenv("CALLISTO_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_CACHE_BACKEND"); val != "" {
		cfg.Cache.Backend = val
	}
	if val := os.Getenv("CALLISTO_CACHE_MAX_ENTRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.MaxEntries = i
		}
	}
	if val := os.Getenv("CALLISTO_CACHE_SQLITE_PATH"); val != "" {
		cfg.Cache.SQLitePath = val
	}

	// Logging overrides
	if val := os.Getenv("CALLISTO_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("CALLISTO_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("CALLISTO_LOG_REDACT_SECRETS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.RedactSecrets = b
		}
	}

	// Metrics overrides
	if val := os.Getenv("CALLISTO_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}
}

// applyProviderEnvOverrides applies environment overrides for one
// provider, e.g. CALLISTO_PROVIDER_OPENAI_MODEL.
func applyProviderEnvOverrides(cfg *Config, name string) {
	prefix := "CALLISTO_PROVIDER_" + strings.ToUpper(name) + "_"

	pc, exists := cfg.Providers[name]
	changed := false

	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		pc.APIKey = val
		changed = true
	}
	if val := os.Getenv(prefix + "ORG_ID"); val != "" {
		pc.OrgID = val
		changed = true
	}
	if val := os.Getenv(prefix + "BASE_URL"); val != "" {
		pc.BaseURL = val
		changed = true
	}
	if val := os.Getenv(prefix + "MODEL"); val != "" {
		pc.Model = val
		changed = true
	}
	if val := os.Getenv(prefix + "MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			pc.MaxRetries = i
			changed = true
		}
	}
	if val := os.Getenv(prefix + "RETRY_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			pc.RetryDelay = d
			changed = true
		}
	}
	if val := os.Getenv(prefix + "DEFAULT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			pc.DefaultTimeout = d
			changed = true
		}
	}

	if changed || exists {
		if cfg.Providers == nil {
			cfg.Providers = make(map[string]ProviderConfig)
		}
		cfg.Providers[name] = pc
	}
}
