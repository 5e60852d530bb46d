package providerfactory

import (
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"nimbus-hq/callisto/pkg/providers"
	"nimbus-hq/callisto/pkg/providers/anthropic"
	"nimbus-hq/callisto/pkg/providers/local"
	"nimbus-hq/callisto/pkg/providers/openai"
)

// ProviderAuto selects the first provider with a configured credential.
const ProviderAuto = "auto"

// DefaultProvider is chosen when auto-detection finds no credential at all.
const DefaultProvider = "openai"

// registry maps provider names to constructors. It is process-wide state,
// populated at init and extended through Register. The mutex guards
// registration; concurrent Register and New calls are safe, but callers
// should still register providers during process start rather than racing
// lookups on purpose.
var (
	registryMu sync.RWMutex
	registry   = map[string]providers.Constructor{}
)

// autoDetectOrder is the fixed credential-probe priority for "auto".
var autoDetectOrder = []struct {
	name   string
	envVar string
}{
	{"openai", "OPENAI_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"local", "LOCAL_LLM_BASE_URL"},
}

func init() {
	Register("openai", openai.New)
	Register("anthropic", anthropic.New)
	Register("local", local.New)
}

// Register adds a provider constructor under name, replacing any previous
// registration. It allows new provider implementations to be plugged in
// without modifying the factory.
func Register(name string, constructor providers.Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = constructor
}

// Registered returns the sorted list of registered provider names.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs a fresh adapter for the named provider. Instances are never
// cached, so distinct credentials and models can coexist.
//
// name "auto" resolves by probing for configured credentials in a fixed
// priority order (openai, anthropic, local); when none is configured the
// default provider is chosen with a logged warning. An unregistered name
// fails with an UnsupportedProviderError listing the registered names.
//
// When opts carries no APIKey, the credential is resolved from the
// {PROVIDER}_API_KEY environment variable.
func New(name string, opts providers.AdapterOptions) (providers.Adapter, error) {
	if name == ProviderAuto {
		name = detectProvider()
	}

	registryMu.RLock()
	constructor, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, &providers.UnsupportedProviderError{
			Name:       name,
			Registered: Registered(),
		}
	}

	if opts.APIKey == "" {
		opts.APIKey = os.Getenv(credentialVar(name))
	}
	if name == "local" && opts.BaseURL == "" {
		opts.BaseURL = os.Getenv("LOCAL_LLM_BASE_URL")
	}

	slog.Debug("creating adapter",
		"provider", name,
		"model", opts.Model,
	)

	return constructor(opts)
}

// detectProvider probes the fixed priority order for a configured
// credential.
func detectProvider() string {
	for _, candidate := range autoDetectOrder {
		if os.Getenv(candidate.envVar) != "" {
			slog.Info("auto-detected provider",
				"provider", candidate.name,
				"credential", candidate.envVar,
			)
			return candidate.name
		}
	}

	slog.Warn("no provider credential configured, falling back to default",
		"provider", DefaultProvider,
	)
	return DefaultProvider
}

// credentialVar names the environment variable holding a provider's API key.
func credentialVar(name string) string {
	return strings.ToUpper(name) + "_API_KEY"
}
