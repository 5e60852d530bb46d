// Package config loads and validates application configuration.
//
// Configuration is read from a YAML file, defaults are applied for
// any omitted fields, and CALLISTO_* environment variables override
// file values. The final result is validated before use.
//
// Loading sequence:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("callisto.yaml")
//
// Per-provider settings convert directly into adapter options:
//
//	adapter, err := providerfactory.New("openai", cfg.AdapterOptions("openai"))
//
// A process-wide singleton is available through Initialize/GetConfig
// for applications that prefer global configuration; libraries should
// take explicit *Config values instead.
package config
