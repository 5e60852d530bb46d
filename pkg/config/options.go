package config

import "nimbus-hq/callisto/pkg/providers"

// AdapterOptions converts the named provider's configuration into
// adapter options. Unknown provider names return zero options, which
// adapters fill with their own defaults.
func (c *Config) AdapterOptions(name string) providers.AdapterOptions {
	pc, ok := c.Providers[name]
	if !ok {
		return providers.AdapterOptions{}
	}
	return providers.AdapterOptions{
		APIKey:            pc.APIKey,
		OrgID:             pc.OrgID,
		Model:             pc.Model,
		BaseURL:           pc.BaseURL,
		MaxRetries:        pc.MaxRetries,
		RetryDelay:        pc.RetryDelay,
		TimeoutMultiplier: pc.TimeoutMultiplier,
		DefaultTimeout:    pc.DefaultTimeout,
	}
}
