// Package providers defines the uniform adapter contract for LLM chat
// completion and text embedding, the provider-agnostic value types exchanged
// across it, the typed error taxonomy, and the shared HTTP base that
// implements the retry/backoff/timeout protocol.
//
// # Architecture
//
// Callers speak one contract regardless of which backing provider serves a
// request:
//
//	caller -> compat.Facade -> providerfactory -> Adapter -> remote API
//
// Each concrete adapter (openai, anthropic, local) translates Message and
// CompletionConfig values into its provider's wire shape and normalizes the
// response into CompletionResult. Capability gaps are reported as typed
// CapabilityError values so that upstream fallback logic can distinguish
// "this provider cannot do this" from "this call failed".
//
// # Retry protocol
//
// Complete and Embed run under the same protocol: up to MaxRetries+1
// attempts, with each failure classified before any retry. Timeouts and
// transient conditions (rate limits, 5xx) back off exponentially at
// RetryDelay * 2^attempt; permanent conditions surface immediately with the
// provider's diagnostic text preserved. Exhausting the budget yields a
// single RetriesExhaustedError naming the provider, operation, and last
// cause.
//
// # Metrics
//
// Every adapter instance owns a set of process-lifetime counters: calls,
// errors, retries, and cumulative token usage. Counters are atomic, never
// reset, and are discarded with the adapter.
//
// # Error Handling
//
// The taxonomy is typed, not string-matched:
//
//   - TimeoutError: deadline exceeded, always retryable
//   - TransientError: rate-limit/5xx class, retryable with backoff
//   - PermanentError: auth/validation/malformed request, never retried
//   - CapabilityError: operation unsupported by the provider
//   - UnsupportedProviderError: factory-time configuration error
//   - NotInitializedError: facade used before construction succeeded
//
// IsRetryable applies typed checks first and falls back to transient
// message patterns only for untyped errors from lower layers.
package providers
