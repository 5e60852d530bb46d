package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// TimeoutError reports that a call exceeded its deadline.
// Timeouts are always retryable.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Op is the operation that timed out ("complete", "embed", "health")
	Op string

	// Timeout is the enforced deadline
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q %s timed out after %s", e.Provider, e.Op, e.Timeout)
}

// TransientError reports a failure expected to clear on its own:
// rate limiting (HTTP 429) and 5xx-class service errors.
// Transient errors are retried with exponential backoff.
type TransientError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message from the provider
	Message string

	// RetryAfter is the provider-suggested wait, if any
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q transient error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q transient error: %s", e.Provider, e.Message)
}

// PermanentError reports a failure that retrying cannot fix: authentication,
// validation, and malformed-request class errors. It is surfaced immediately
// with the provider's diagnostic text preserved.
type PermanentError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message from the provider
	Message string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// CapabilityError reports that a provider lacks the requested operation
// entirely (e.g., Anthropic has no embeddings endpoint). It is distinct from
// a generic failure so callers can fall back to a capable provider instead
// of treating the condition as an outage.
type CapabilityError struct {
	// Provider is the name of the provider lacking the capability
	Provider string

	// Capability is the missing operation ("embeddings", "completions")
	Capability string
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("provider %q does not support %s", e.Provider, e.Capability)
}

// UnsupportedProviderError reports a factory lookup for an unregistered
// provider name.
type UnsupportedProviderError struct {
	// Name is the requested provider name
	Name string

	// Registered lists the provider names known to the factory
	Registered []string
}

// Error implements the error interface.
func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q (registered: %s)",
		e.Name, strings.Join(e.Registered, ", "))
}

// NotInitializedError reports use of a facade whose adapter could not be
// constructed.
type NotInitializedError struct {
	// Cause is the construction error
	Cause error
}

// Error implements the error interface.
func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("provider layer not initialized: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *NotInitializedError) Unwrap() error {
	return e.Cause
}

// ParseError reports a malformed provider response.
type ParseError struct {
	// Provider is the name of the provider that returned the response
	Provider string

	// RawResponse is the response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// RetriesExhaustedError is the terminal failure after a retryable error
// survived every attempt. It identifies the provider, the operation, and
// the last observed cause in a single summarizing message.
type RetriesExhaustedError struct {
	// Provider is the adapter's provider name
	Provider string

	// Op is the operation that failed ("complete", "embed")
	Op string

	// Attempts is the total number of attempts made
	Attempts int

	// Cause is the last error observed
	Cause error
}

// Error implements the error interface.
func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("provider %q %s failed after %d attempts: %v",
		e.Provider, e.Op, e.Attempts, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *RetriesExhaustedError) Unwrap() error {
	return e.Cause
}

// transientPatterns are message fragments that mark an otherwise untyped
// error as retryable. Provider SDKs and proxies are inconsistent about
// status codes, so the classifier falls back to these after typed checks.
var transientPatterns = []string{
	"rate limit",
	"too many requests",
	"service unavailable",
	"bad gateway",
	"gateway timeout",
	"server overloaded",
	"overloaded_error",
	"internal server error",
	"connection reset",
	"temporarily unavailable",
}

// IsRetryable classifies an error for the retry loop. Timeouts and
// transient conditions retry; everything else surfaces immediately.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}

	var transientErr *TransientError
	if errors.As(err, &transientErr) {
		return true
	}

	var capErr *CapabilityError
	if errors.As(err, &capErr) {
		return false
	}

	var permErr *PermanentError
	if errors.As(err, &permErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
