package providerfactory

import (
	"errors"
	"testing"

	"nimbus-hq/callisto/pkg/providers"
)

// clearProviderEnv blanks every credential variable the factory probes
// so auto-detection tests control exactly which one is set.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "LOCAL_LLM_BASE_URL"} {
		t.Setenv(v, "")
	}
}

func TestNewKnownProviders(t *testing.T) {
	clearProviderEnv(t)

	for _, name := range []string{"openai", "anthropic", "local"} {
		adapter, err := New(name, providers.AdapterOptions{APIKey: "test-key"})
		if err != nil {
			t.Fatalf("New(%q) failed: %v", name, err)
		}
		if adapter.Name() != name {
			t.Errorf("expected adapter name %q, got %q", name, adapter.Name())
		}
	}
}

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New("no-such-provider", providers.AdapterOptions{})

	var unsupported *providers.UnsupportedProviderError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedProviderError, got %T: %v", err, err)
	}
	if unsupported.Name != "no-such-provider" {
		t.Errorf("unexpected name %q", unsupported.Name)
	}
	if len(unsupported.Registered) == 0 {
		t.Error("expected registered names in the error")
	}
}

func TestNewReturnsFreshInstances(t *testing.T) {
	clearProviderEnv(t)

	a, err := New("openai", providers.AdapterOptions{APIKey: "key-a"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := New("openai", providers.AdapterOptions{APIKey: "key-b"})
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("expected distinct adapter instances per call")
	}
}

func TestNewReadsCredentialFromEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "env-key")

	adapter, err := New("openai", providers.AdapterOptions{})
	if err != nil {
		t.Fatal(err)
	}

	base, ok := adapter.(interface{ CredentialsConfigured() bool })
	if !ok {
		t.Fatal("adapter does not expose credential state")
	}
	if !base.CredentialsConfigured() {
		t.Error("expected credential to be picked up from the environment")
	}
}

func TestAutoDetectOpenAI(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	adapter, err := New(ProviderAuto, providers.AdapterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if adapter.Name() != "openai" {
		t.Errorf("expected openai, got %q", adapter.Name())
	}
}

func TestAutoDetectAnthropicWhenOnlyItsCredentialSet(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	adapter, err := New(ProviderAuto, providers.AdapterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if adapter.Name() != "anthropic" {
		t.Errorf("expected anthropic, got %q", adapter.Name())
	}
}

func TestAutoDetectLocal(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("LOCAL_LLM_BASE_URL", "http://localhost:11434/v1")

	adapter, err := New(ProviderAuto, providers.AdapterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if adapter.Name() != "local" {
		t.Errorf("expected local, got %q", adapter.Name())
	}
}

func TestAutoDetectPriorityOrder(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	adapter, err := New(ProviderAuto, providers.AdapterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if adapter.Name() != "openai" {
		t.Errorf("expected openai to win the priority order, got %q", adapter.Name())
	}
}

func TestAutoDetectFallsBackToDefault(t *testing.T) {
	clearProviderEnv(t)

	adapter, err := New(ProviderAuto, providers.AdapterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if adapter.Name() != DefaultProvider {
		t.Errorf("expected default provider %q, got %q", DefaultProvider, adapter.Name())
	}
}

func TestRegisterCustomProvider(t *testing.T) {
	called := false
	Register("custom-test", func(opts providers.AdapterOptions) (providers.Adapter, error) {
		called = true
		return nil, errors.New("constructor invoked")
	})

	_, err := New("custom-test", providers.AdapterOptions{APIKey: "k"})
	if !called {
		t.Error("expected custom constructor to be invoked")
	}
	if err == nil || err.Error() != "constructor invoked" {
		t.Errorf("unexpected error: %v", err)
	}

	names := Registered()
	found := false
	for _, n := range names {
		if n == "custom-test" {
			found = true
		}
	}
	if !found {
		t.Error("expected custom provider in registry listing")
	}
}

func TestRegisteredSorted(t *testing.T) {
	names := Registered()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("expected sorted names, got %v", names)
			break
		}
	}
}
