// Package providerfactory resolves provider names to adapter instances.
//
// The registry is a process-wide map from provider name to constructor,
// populated at init with the built-in providers (openai, anthropic, local)
// and extensible at runtime through Register. Adapters are constructed
// fresh on every New call so distinct credentials and models can coexist;
// callers own the instances they receive.
//
// The special name "auto" probes for configured credentials in a fixed
// priority order and falls back to the default provider, with a warning,
// when nothing is configured. Credentials resolve from {PROVIDER}_API_KEY
// environment variables unless passed explicitly.
//
// Manager is a thin named collection of adapters for cross-provider
// components like the health prober.
package providerfactory
