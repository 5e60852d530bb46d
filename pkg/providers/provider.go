package providers

import "context"

// Adapter is the uniform contract every provider implementation satisfies.
// It normalizes completion and embedding across heterogeneous LLM APIs so
// callers never see a provider's wire format, error taxonomy, or capability
// gaps directly.
//
// All methods accept a context.Context. Implementations must respect
// cancellation and return promptly when the context is done.
//
// Example usage:
//
//	adapter, err := providerfactory.New("openai", opts)
//	if err != nil {
//	    return err
//	}
//
//	result, err := adapter.Complete(ctx, []providers.Message{
//	    {Role: providers.RoleUser, Content: "Hello!"},
//	}, providers.CompletionConfig{Model: "gpt-4o"})
type Adapter interface {
	// Complete translates the messages and config into the provider's wire
	// shape, issues the call under a deadline of config.Timeout scaled by
	// the adapter's timeout multiplier, and normalizes the response.
	//
	// Messages must be non-empty. At most one system-role message is
	// honored (the first found); extras are sent as ordinary content where
	// the provider has no equivalent slot. Transient failures are retried
	// with exponential backoff before surfacing.
	Complete(ctx context.Context, messages []Message, config CompletionConfig) (*CompletionResult, error)

	// Embed returns the embedding vector for text using model (or the
	// adapter's default model when empty). Text is defensively normalized
	// before transmission; an empty input is never sent.
	//
	// Providers without embedding support return a *CapabilityError so
	// upstream fallback logic can distinguish "cannot" from "failed".
	Embed(ctx context.Context, text string, model string) (Embedding, error)

	// HealthCheck issues the cheapest representative real call (an
	// embedding when supported, else a minimal completion) and reports
	// status and latency. Failures are captured in the report, never
	// returned as errors.
	HealthCheck(ctx context.Context) HealthReport

	// Name returns the provider name (e.g., "openai", "anthropic").
	Name() string

	// Models returns the hand-maintained list of known model identifiers.
	// No network call is made; coupling availability to a live model query
	// would tie health to a second round trip.
	Models() []string

	// Metrics returns a snapshot of the adapter's lifetime counters.
	Metrics() MetricsSnapshot
}

// Constructor builds an adapter from construction-time options.
// The factory registry maps provider names to constructors.
type Constructor func(opts AdapterOptions) (Adapter, error)
