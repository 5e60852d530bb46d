package providers

import (
	"sync/atomic"
	"time"
)

// Message represents a single conversation turn.
// It is provider-agnostic and is transformed to provider-specific formats
// by each adapter. Ordering within a conversation is caller-defined and
// preserved; adapters may only lift the first system message into a
// provider's out-of-band system slot.
type Message struct {
	// Role identifies the message sender (system, user, assistant, function)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`

	// Name is an optional name for the message sender
	Name string `json:"name,omitempty"`

	// FunctionCall is set on assistant messages that invoked a function
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// FunctionCall represents a specific function invocation.
type FunctionCall struct {
	// Name is the function name to call
	Name string `json:"name"`

	// Arguments is a JSON string containing the function arguments
	Arguments string `json:"arguments"`
}

// ToolCall represents a function/tool call request from the model.
type ToolCall struct {
	// ID is a unique identifier for this tool call
	ID string `json:"id"`

	// Type is the type of tool call (currently always "function")
	Type string `json:"type"`

	// Function contains the function name and arguments
	Function FunctionCall `json:"function"`
}

// Tool represents a tool/function definition the model can call.
type Tool struct {
	// Type is the type of tool (currently always "function")
	Type string `json:"type"`

	// Function contains the function definition
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition defines a callable function.
type FunctionDefinition struct {
	// Name is the function name
	Name string `json:"name"`

	// Description explains what the function does
	Description string `json:"description,omitempty"`

	// Parameters is a JSON Schema object describing the function parameters
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// CompletionConfig carries per-call generation settings.
//
// Temperature and TopP are deliberately not range-checked here: out-of-range
// values pass through and surface as provider errors, so callers see the
// provider's own diagnostics rather than a synthetic one.
type CompletionConfig struct {
	// Model is the model identifier (e.g., "gpt-4o", "claude-sonnet-4-5")
	Model string `json:"model"`

	// Temperature controls randomness (providers accept 0.0 to 2.0)
	Temperature float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling
	TopP float64 `json:"top_p,omitempty"`

	// MaxTokens is the maximum number of tokens to generate (0 = provider default)
	MaxTokens int `json:"max_tokens,omitempty"`

	// FrequencyPenalty reduces repetition based on frequency (-2.0 to 2.0)
	FrequencyPenalty float64 `json:"frequency_penalty,omitempty"`

	// PresencePenalty reduces repetition (-2.0 to 2.0)
	PresencePenalty float64 `json:"presence_penalty,omitempty"`

	// Timeout is the per-call budget in seconds. The adapter enforces a
	// deadline of Timeout multiplied by its timeout multiplier.
	Timeout float64 `json:"timeout,omitempty"`

	// Stop sequences that halt generation, in caller order
	Stop []string `json:"stop,omitempty"`

	// Tools is a list of tools the model can call
	Tools []Tool `json:"tools,omitempty"`

	// ToolChoice controls which tools can be called
	// ("none", "auto", or a function selector object)
	ToolChoice interface{} `json:"tool_choice,omitempty"`

	// ResponseFormat is a response-format hint (e.g., {"type": "json_object"})
	ResponseFormat map[string]interface{} `json:"response_format,omitempty"`

	// Seed requests deterministic sampling where the provider supports it
	Seed *int `json:"seed,omitempty"`

	// Metadata carries free-form request context. It is never sent to the
	// provider.
	Metadata map[string]string `json:"-"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the prompt
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is prompt plus completion
	TotalTokens int `json:"total_tokens"`
}

// CompletionResult is the normalized outcome of a completion call.
// It is newly constructed per call and owned by the caller.
type CompletionResult struct {
	// Content is the generated text content
	Content string `json:"content"`

	// Model is the model echoed by the provider
	Model string `json:"model"`

	// Usage contains token consumption information
	Usage TokenUsage `json:"usage"`

	// FinishReason indicates why generation stopped
	// (stop, length, function_call, content_filter)
	FinishReason string `json:"finish_reason"`

	// FunctionCall is the single function call requested by the model,
	// if any. For providers without a native tool channel this is
	// extracted best-effort from a delimited block in the text body.
	FunctionCall *FunctionCall `json:"function_call,omitempty"`

	// ToolCalls contains the ordered tool calls made by the model
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Raw is the undecoded provider response, retained only for
	// diagnostics. Callers must not parse it.
	Raw []byte `json:"-"`
}

// Embedding is a fixed-length vector of floats. The length is provider-and-
// model dependent (1536 for OpenAI ada-class models) and stable for a given
// (provider, model) pair for the lifetime of the process.
type Embedding []float32

// HealthStatus is the coarse liveness classification of a provider.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthReport is the outcome of a single health probe against one adapter.
type HealthReport struct {
	// Provider is the adapter's provider name
	Provider string `json:"provider"`

	// Status is the probe classification
	Status HealthStatus `json:"status"`

	// LatencyMS is the probe round-trip latency in milliseconds
	LatencyMS int64 `json:"latency_ms"`

	// CredentialsConfigured reports whether an API key was supplied
	CredentialsConfigured bool `json:"credentials_configured"`

	// Error holds the probe failure message when Status is not healthy
	Error string `json:"error,omitempty"`

	// Metrics is a snapshot of the adapter's lifetime counters
	Metrics MetricsSnapshot `json:"metrics"`
}

// AdapterMetrics holds the process-lifetime counters owned by one adapter
// instance. Counters are atomic so a single instance may be shared across
// goroutines; they are created at construction and never reset.
type AdapterMetrics struct {
	calls            atomic.Int64
	errors           atomic.Int64
	retries          atomic.Int64
	promptTokens     atomic.Int64
	completionTokens atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of adapter counters.
type MetricsSnapshot struct {
	// CallCount is the number of attempts issued (every retry counts)
	CallCount int64 `json:"call_count"`

	// ErrorCount is the number of failed attempts
	ErrorCount int64 `json:"error_count"`

	// RetryCount is the number of delayed retries performed
	RetryCount int64 `json:"retry_count"`

	// PromptTokens is the cumulative prompt token usage
	PromptTokens int64 `json:"prompt_tokens"`

	// CompletionTokens is the cumulative completion token usage
	CompletionTokens int64 `json:"completion_tokens"`
}

// ErrorRate returns errors/calls, or 0 when no calls were made.
func (s MetricsSnapshot) ErrorRate() float64 {
	if s.CallCount == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.CallCount)
}

// TotalTokens is the cumulative token usage across all successful calls.
func (s MetricsSnapshot) TotalTokens() int64 {
	return s.PromptTokens + s.CompletionTokens
}

// RecordCall increments the attempt counter.
func (m *AdapterMetrics) RecordCall() { m.calls.Add(1) }

// RecordError increments the failed-attempt counter.
func (m *AdapterMetrics) RecordError() { m.errors.Add(1) }

// RecordRetry increments the delayed-retry counter.
func (m *AdapterMetrics) RecordRetry() { m.retries.Add(1) }

// RecordUsage accumulates token usage from a successful call.
func (m *AdapterMetrics) RecordUsage(u TokenUsage) {
	m.promptTokens.Add(int64(u.PromptTokens))
	m.completionTokens.Add(int64(u.CompletionTokens))
}

// Snapshot returns a copy of the current counter values.
func (m *AdapterMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CallCount:        m.calls.Load(),
		ErrorCount:       m.errors.Load(),
		RetryCount:       m.retries.Load(),
		PromptTokens:     m.promptTokens.Load(),
		CompletionTokens: m.completionTokens.Load(),
	}
}

// AdapterOptions carries construction-time settings shared by all adapters.
// All fields are fixed for the lifetime of the adapter; nothing is reloaded
// at runtime.
type AdapterOptions struct {
	// APIKey is the provider credential. Empty means unauthenticated
	// (local providers) or unconfigured (remote providers).
	APIKey string

	// OrgID is an optional organization/tenant identifier for providers
	// that support multi-tenant billing.
	OrgID string

	// Model is the default model used when a call does not name one.
	Model string

	// BaseURL overrides the provider's API endpoint.
	BaseURL string

	// MaxRetries is the maximum number of retry attempts after the first.
	MaxRetries int

	// RetryDelay is the base backoff delay; attempt n sleeps
	// RetryDelay * 2^n.
	RetryDelay time.Duration

	// TimeoutMultiplier scales the per-call timeout from CompletionConfig.
	TimeoutMultiplier float64

	// DefaultTimeout applies when a call carries no timeout of its own.
	DefaultTimeout time.Duration

	// MaxIdleConns bounds the HTTP connection pool.
	MaxIdleConns int

	// MaxIdleConnsPerHost bounds idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains pooled.
	IdleConnTimeout time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// Finish reason constants
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonFunctionCall  = "function_call"
	FinishReasonContentFilter = "content_filter"
)

// Tool type constants
const (
	ToolTypeFunction = "function"
)
