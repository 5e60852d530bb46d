package main

import (
	"testing"

	"nimbus-hq/callisto/pkg/config"
)

func TestResolveProvider(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.DefaultProvider = "anthropic"

	if got := resolveProvider("openai", cfg); got != "openai" {
		t.Errorf("flag should win, got %q", got)
	}
	if got := resolveProvider("", cfg); got != "anthropic" {
		t.Errorf("config default should apply, got %q", got)
	}
}

func TestOpenCacheStoreDefaultsToMemory(t *testing.T) {
	store, err := openCacheStore(config.CacheConfig{Backend: "memory", MaxEntries: 10})
	if err != nil {
		t.Fatalf("openCacheStore failed: %v", err)
	}
	defer store.Close()
}

func TestBuildManagerFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Providers = map[string]config.ProviderConfig{
		"local": {BaseURL: "http://localhost:11434/v1"},
	}

	manager, err := buildManager(cfg)
	if err != nil {
		t.Fatalf("buildManager failed: %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("expected 1 adapter, got %d", manager.Count())
	}
	if _, err := manager.Get("local"); err != nil {
		t.Errorf("expected local adapter registered: %v", err)
	}
}
