package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Default construction-time settings applied when AdapterOptions leaves a
// field zero.
const (
	DefaultMaxRetries          = 3
	DefaultRetryDelay          = 1 * time.Second
	DefaultTimeoutMultiplier   = 1.0
	DefaultTimeout             = 30 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
)

// CallObserver receives request-path events from an adapter so an external
// sink (the Prometheus collector, typically) can mirror the lifetime
// counters: one ObserveCall per attempt, one ObserveError per failed
// attempt, one ObserveRetry per delayed retry, and ObserveUsage on success.
type CallObserver interface {
	ObserveCall(provider, op string, latency time.Duration)
	ObserveError(provider, op string, err error)
	ObserveRetry(provider, op string)
	ObserveUsage(provider string, usage TokenUsage)
}

// HTTPAdapter is the shared base for HTTP-backed provider adapters. It owns
// the lazily created connection-pooled client, the retry/backoff/timeout
// protocol, per-instance metrics counters, and defensive text normalization.
//
// Concrete adapters (OpenAI, Anthropic, local) embed this struct and
// implement the Adapter interface on top of DoJSON and WithRetry.
type HTTPAdapter struct {
	name string
	opts AdapterOptions

	metrics  AdapterMetrics
	observer CallObserver

	// client is created on first use and reused for every call.
	client     *http.Client
	clientOnce sync.Once
}

// NewHTTPAdapter creates the shared base with defaults applied.
func NewHTTPAdapter(name string, opts AdapterOptions) *HTTPAdapter {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.TimeoutMultiplier == 0 {
		opts.TimeoutMultiplier = DefaultTimeoutMultiplier
	}
	if opts.DefaultTimeout == 0 {
		opts.DefaultTimeout = DefaultTimeout
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = DefaultMaxIdleConns
	}
	if opts.MaxIdleConnsPerHost == 0 {
		opts.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if opts.IdleConnTimeout == 0 {
		opts.IdleConnTimeout = DefaultIdleConnTimeout
	}

	return &HTTPAdapter{
		name: name,
		opts: opts,
	}
}

// Name returns the provider name.
func (a *HTTPAdapter) Name() string {
	return a.name
}

// Options returns the construction-time settings.
func (a *HTTPAdapter) Options() AdapterOptions {
	return a.opts
}

// Metrics returns a snapshot of the lifetime counters.
func (a *HTTPAdapter) Metrics() MetricsSnapshot {
	return a.metrics.Snapshot()
}

// Counters exposes the live counters to embedding adapters.
func (a *HTTPAdapter) Counters() *AdapterMetrics {
	return &a.metrics
}

// SetCallObserver installs an observer for request-path events. Install it
// before the adapter serves calls; the field is not synchronized.
func (a *HTTPAdapter) SetCallObserver(obs CallObserver) {
	a.observer = obs
}

// RecordUsage accumulates token usage from a successful call and forwards
// it to the observer, if any.
func (a *HTTPAdapter) RecordUsage(usage TokenUsage) {
	a.metrics.RecordUsage(usage)
	if a.observer != nil {
		a.observer.ObserveUsage(a.name, usage)
	}
}

// CredentialsConfigured reports whether an API key was supplied.
func (a *HTTPAdapter) CredentialsConfigured() bool {
	return a.opts.APIKey != ""
}

// httpClient returns the shared client, creating it on first use.
func (a *HTTPAdapter) httpClient() *http.Client {
	a.clientOnce.Do(func() {
		transport := &http.Transport{
			MaxIdleConns:        a.opts.MaxIdleConns,
			MaxIdleConnsPerHost: a.opts.MaxIdleConnsPerHost,
			IdleConnTimeout:     a.opts.IdleConnTimeout,
			ForceAttemptHTTP2:   true,
		}
		// Per-attempt deadlines come from the request context, not a
		// client-wide timeout.
		a.client = &http.Client{Transport: transport}
	})
	return a.client
}

// Deadline resolves the per-attempt deadline: the call's timeout (seconds)
// scaled by the adapter's multiplier, or the construction-time default.
func (a *HTTPAdapter) Deadline(callTimeout float64) time.Duration {
	if callTimeout <= 0 {
		return a.opts.DefaultTimeout
	}
	return time.Duration(callTimeout * a.opts.TimeoutMultiplier * float64(time.Second))
}

// retryState is a phase of the retry protocol. The only legal suspension
// points are the network call in stateAttempting and the sleep in
// stateBackoff; both yield to the scheduler rather than busy-waiting.
type retryState int

const (
	stateAttempting retryState = iota
	stateBackoff
	stateSucceeded
	stateFailed
)

// WithRetry runs fn up to MaxRetries+1 times, applying the shared retry
// protocol: every attempt increments the call counter, every failed attempt
// the error counter, and every delayed retry the retry counter. Retryable
// failures (timeouts and transient conditions) back off exponentially at
// RetryDelay * 2^attempt before the next attempt; anything else is returned
// unchanged after the first failure. Exhausting the budget on a retryable
// failure returns a RetriesExhaustedError wrapping the last cause.
func (a *HTTPAdapter) WithRetry(ctx context.Context, op string, deadline time.Duration, fn func(ctx context.Context) error) error {
	var lastErr error
	attempt := 0
	state := stateAttempting

	for {
		switch state {
		case stateAttempting:
			a.metrics.RecordCall()

			start := time.Now()
			attemptCtx, cancel := context.WithTimeout(ctx, deadline)
			err := fn(attemptCtx)
			cancel()

			if a.observer != nil {
				a.observer.ObserveCall(a.name, op, time.Since(start))
			}

			// A context expiry inside the attempt is a timeout for
			// classification purposes; the in-flight request has been
			// abandoned by the cancel.
			if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				err = &TimeoutError{Provider: a.name, Op: op, Timeout: deadline}
			}

			if err == nil {
				state = stateSucceeded
				break
			}

			a.metrics.RecordError()
			if a.observer != nil {
				a.observer.ObserveError(a.name, op, err)
			}
			lastErr = err

			if ctx.Err() != nil {
				// The caller's own context ended; nothing left to retry.
				state = stateFailed
				break
			}

			if !IsRetryable(err) {
				slog.Debug("non-retryable provider error",
					"provider", a.name,
					"op", op,
					"error", err,
				)
				state = stateFailed
				break
			}

			if attempt >= a.opts.MaxRetries {
				lastErr = &RetriesExhaustedError{
					Provider: a.name,
					Op:       op,
					Attempts: attempt + 1,
					Cause:    err,
				}
				state = stateFailed
				break
			}

			attempt++
			state = stateBackoff

		case stateBackoff:
			delay := a.opts.RetryDelay * time.Duration(1<<uint(attempt))
			slog.Warn("retrying provider call",
				"provider", a.name,
				"op", op,
				"attempt", attempt,
				"max_retries", a.opts.MaxRetries,
				"backoff", delay,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				// The caller gave up while we were waiting; report the
				// cancellation, not the provider error we were about to
				// retry past.
				lastErr = ctx.Err()
				state = stateFailed
			case <-time.After(delay):
				a.metrics.RecordRetry()
				if a.observer != nil {
					a.observer.ObserveRetry(a.name, op)
				}
				state = stateAttempting
			}

		case stateSucceeded:
			return nil

		case stateFailed:
			return lastErr
		}
	}
}

// DoJSON performs a single JSON request/response exchange and classifies
// HTTP failures into the typed error taxonomy. It returns the raw response
// body so adapters can retain it for diagnostics.
func (a *HTTPAdapter) DoJSON(ctx context.Context, method, url string, reqBody, respBody interface{}, headers map[string]string) ([]byte, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	slog.Debug("sending provider request",
		"provider", a.name,
		"method", method,
		"url", url,
	)

	resp, err := a.httpClient().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// Network-level failures are treated as transient.
		return nil, &TransientError{Provider: a.name, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Provider: a.name, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, a.classifyStatus(resp, raw)
	}

	if respBody != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return raw, &ParseError{
				Provider:    a.name,
				RawResponse: string(raw),
				Cause:       err,
			}
		}
	}

	return raw, nil
}

// classifyStatus maps a non-2xx response onto the error taxonomy.
func (a *HTTPAdapter) classifyStatus(resp *http.Response, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &TransientError{
			Provider:   a.name,
			StatusCode: resp.StatusCode,
			Message:    msg,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}

	case resp.StatusCode >= 500:
		return &TransientError{
			Provider:   a.name,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}

	default:
		// 4xx class: auth, validation, malformed request. Not retried.
		return &PermanentError{
			Provider:   a.name,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}
}

// parseRetryAfter parses a Retry-After header in either delay-seconds or
// HTTP-date form.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}

// NormalizeEmbedText prepares text for an embedding request: strip null
// bytes, collapse whitespace runs to single spaces, truncate to maxChars,
// and substitute a single space for empty input so an empty string is never
// transmitted.
func NormalizeEmbedText(text string, maxChars int) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.Join(strings.Fields(text), " ")

	if maxChars > 0 {
		if runes := []rune(text); len(runes) > maxChars {
			text = string(runes[:maxChars])
		}
	}

	if text == "" {
		return " "
	}
	return text
}
