package compat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"nimbus-hq/callisto/pkg/providerfactory"
	"nimbus-hq/callisto/pkg/providers"
)

// DefaultFallbackProvider serves embedding calls when the primary provider
// lacks the capability.
const DefaultFallbackProvider = "openai"

// Config selects the primary adapter and the embedding fallback.
type Config struct {
	// Provider is the primary provider name ("auto" is accepted).
	Provider string

	// FallbackProvider serves embeddings when the primary cannot.
	// Defaults to DefaultFallbackProvider.
	FallbackProvider string

	// Options are passed to the factory for the primary adapter.
	Options providers.AdapterOptions

	// FallbackOptions are passed to the factory for the fallback adapter.
	// When zero, the fallback resolves its own credential from the
	// environment.
	FallbackOptions providers.AdapterOptions
}

// Facade exposes the legacy plain-mapping call surface over one selected
// adapter. Incoming chat turns are plain key-value records rather than typed
// messages and results are reassembled into the provider-agnostic completion
// envelope, so callers written against that shape keep working when the
// adapter layer underneath is swapped.
//
// Embedding calls that fail with a CapabilityError are transparently retried
// once against the fallback provider; the fallback adapter is constructed
// lazily and reused.
type Facade struct {
	primary      providers.Adapter
	fallbackName string
	fallbackOpts providers.AdapterOptions
	initErr      error

	fallbackOnce sync.Once
	fallback     providers.Adapter
	fallbackErr  error
}

// New constructs the facade and its primary adapter. Construction errors
// (missing credentials, unsupported provider) surface here rather than being
// deferred to the first call; the returned facade is still usable for
// inspection but every operation reports NotInitializedError.
func New(cfg Config) (*Facade, error) {
	if cfg.FallbackProvider == "" {
		cfg.FallbackProvider = DefaultFallbackProvider
	}

	f := &Facade{
		fallbackName: cfg.FallbackProvider,
		fallbackOpts: cfg.FallbackOptions,
	}

	adapter, err := providerfactory.New(cfg.Provider, cfg.Options)
	if err != nil {
		f.initErr = err
		return f, err
	}
	f.primary = adapter

	slog.Info("compatibility facade initialized",
		"provider", adapter.Name(),
		"fallback", cfg.FallbackProvider,
	)

	return f, nil
}

// ready returns the primary adapter or the initialization failure.
func (f *Facade) ready() (providers.Adapter, error) {
	if f.primary == nil {
		return nil, &providers.NotInitializedError{Cause: f.initErr}
	}
	return f.primary, nil
}

// ChatOptions mirrors the legacy keyword arguments of the plain-mapping
// chat surface.
type ChatOptions struct {
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     float64
	Stop        []string
	Tools       []providers.Tool
	ToolChoice  interface{}
}

// ChatCompletion accepts conversation turns as plain mappings with "role",
// "content" and optional "name"/"function_call" keys, runs the completion
// through the primary adapter, and returns the familiar completion envelope:
//
//	{id, object, created, model, usage, choices: [{index, message, finish_reason}]}
func (f *Facade) ChatCompletion(ctx context.Context, messages []map[string]interface{}, opts ChatOptions) (map[string]interface{}, error) {
	adapter, err := f.ready()
	if err != nil {
		return nil, err
	}

	typed, err := messagesFromMaps(messages)
	if err != nil {
		return nil, err
	}

	result, err := adapter.Complete(ctx, typed, providers.CompletionConfig{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
		Timeout:     opts.Timeout,
		Stop:        opts.Stop,
		Tools:       opts.Tools,
		ToolChoice:  opts.ToolChoice,
	})
	if err != nil {
		return nil, err
	}

	return envelope(adapter.Name(), result), nil
}

// Embedding returns the embedding vector for text. When the primary adapter
// reports the capability as unsupported, the call is retried exactly once
// against the fallback provider; every other failure propagates unchanged.
func (f *Facade) Embedding(ctx context.Context, text string, model string) ([]float32, error) {
	adapter, err := f.ready()
	if err != nil {
		return nil, err
	}

	vector, err := adapter.Embed(ctx, text, model)
	if err == nil {
		return vector, nil
	}

	var capErr *providers.CapabilityError
	if !errors.As(err, &capErr) {
		return nil, err
	}

	fallback, fbErr := f.fallbackAdapter()
	if fbErr != nil {
		return nil, fmt.Errorf("embedding fallback to %q unavailable: %w", f.fallbackName, fbErr)
	}

	slog.Info("embedding capability fallback",
		"primary", adapter.Name(),
		"fallback", fallback.Name(),
	)

	return fallback.Embed(ctx, text, model)
}

// fallbackAdapter constructs the fallback once and reuses it.
func (f *Facade) fallbackAdapter() (providers.Adapter, error) {
	f.fallbackOnce.Do(func() {
		f.fallback, f.fallbackErr = providerfactory.New(f.fallbackName, f.fallbackOpts)
	})
	return f.fallback, f.fallbackErr
}

// HealthCheck passes through to the primary adapter. An uninitialized
// facade reports unhealthy rather than erroring, matching the adapter
// contract.
func (f *Facade) HealthCheck(ctx context.Context) providers.HealthReport {
	adapter, err := f.ready()
	if err != nil {
		return providers.HealthReport{
			Status: providers.StatusUnhealthy,
			Error:  err.Error(),
		}
	}
	return adapter.HealthCheck(ctx)
}

// ProviderName returns the primary adapter's provider name, or "" when
// construction failed.
func (f *Facade) ProviderName() string {
	if f.primary == nil {
		return ""
	}
	return f.primary.Name()
}

// Models returns the primary adapter's model list.
func (f *Facade) Models() []string {
	if f.primary == nil {
		return nil
	}
	return f.primary.Models()
}

// messagesFromMaps translates plain-mapping turns 1:1 into typed messages.
func messagesFromMaps(messages []map[string]interface{}) ([]providers.Message, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages must not be empty")
	}

	typed := make([]providers.Message, len(messages))
	for i, m := range messages {
		role, _ := m["role"].(string)
		if role == "" {
			return nil, fmt.Errorf("message %d: missing role", i)
		}
		content, _ := m["content"].(string)
		name, _ := m["name"].(string)

		typed[i] = providers.Message{
			Role:    role,
			Content: content,
			Name:    name,
		}

		if fc, ok := m["function_call"].(map[string]interface{}); ok {
			fnName, _ := fc["name"].(string)
			args, _ := fc["arguments"].(string)
			typed[i].FunctionCall = &providers.FunctionCall{
				Name:      fnName,
				Arguments: args,
			}
		}
	}
	return typed, nil
}

// envelope reassembles a typed result into the legacy completion envelope.
func envelope(provider string, result *providers.CompletionResult) map[string]interface{} {
	message := map[string]interface{}{
		"role":    providers.RoleAssistant,
		"content": result.Content,
	}

	if result.FunctionCall != nil {
		message["function_call"] = map[string]interface{}{
			"name":      result.FunctionCall.Name,
			"arguments": result.FunctionCall.Arguments,
		}
	}

	if len(result.ToolCalls) > 0 {
		toolCalls := make([]map[string]interface{}, len(result.ToolCalls))
		for i, tc := range result.ToolCalls {
			toolCalls[i] = map[string]interface{}{
				"id":   tc.ID,
				"type": tc.Type,
				"function": map[string]interface{}{
					"name":      tc.Function.Name,
					"arguments": tc.Function.Arguments,
				},
			}
		}
		message["tool_calls"] = toolCalls
	}

	return map[string]interface{}{
		"id":       "chatcmpl-" + uuid.NewString(),
		"object":   "chat.completion",
		"created":  time.Now().Unix(),
		"model":    result.Model,
		"provider": provider,
		"usage": map[string]interface{}{
			"prompt_tokens":     result.Usage.PromptTokens,
			"completion_tokens": result.Usage.CompletionTokens,
			"total_tokens":      result.Usage.TotalTokens,
		},
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       message,
				"finish_reason": result.FinishReason,
			},
		},
	}
}
