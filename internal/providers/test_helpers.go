package providers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nimbus-hq/callisto/pkg/providers"
)

// TestOptions returns adapter options tuned for fast tests: short
// timeouts and minimal backoff.
func TestOptions(baseURL string) providers.AdapterOptions {
	return providers.AdapterOptions{
		APIKey:            "test-key",
		BaseURL:           baseURL,
		MaxRetries:        2,
		RetryDelay:        5 * time.Millisecond,
		TimeoutMultiplier: 1.0,
		DefaultTimeout:    5 * time.Second,
	}
}

// TestMessage creates a test message.
func TestMessage(role, content string) providers.Message {
	return providers.Message{
		Role:    role,
		Content: content,
	}
}

// TestCompletionConfig creates a test completion configuration.
func TestCompletionConfig(model string) providers.CompletionConfig {
	return providers.CompletionConfig{
		Model:       model,
		Temperature: 0.7,
		MaxTokens:   100,
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorType fails the test if err does not wrap the expected
// error type from the provider taxonomy.
func AssertErrorType(t *testing.T, err error, expectedType interface{}) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	switch expectedType.(type) {
	case *providers.TimeoutError:
		var target *providers.TimeoutError
		if !errors.As(err, &target) {
			t.Fatalf("expected TimeoutError, got %T: %v", err, err)
		}
	case *providers.TransientError:
		var target *providers.TransientError
		if !errors.As(err, &target) {
			t.Fatalf("expected TransientError, got %T: %v", err, err)
		}
	case *providers.PermanentError:
		var target *providers.PermanentError
		if !errors.As(err, &target) {
			t.Fatalf("expected PermanentError, got %T: %v", err, err)
		}
	case *providers.CapabilityError:
		var target *providers.CapabilityError
		if !errors.As(err, &target) {
			t.Fatalf("expected CapabilityError, got %T: %v", err, err)
		}
	case *providers.ParseError:
		var target *providers.ParseError
		if !errors.As(err, &target) {
			t.Fatalf("expected ParseError, got %T: %v", err, err)
		}
	case *providers.RetriesExhaustedError:
		var target *providers.RetriesExhaustedError
		if !errors.As(err, &target) {
			t.Fatalf("expected RetriesExhaustedError, got %T: %v", err, err)
		}
	case *providers.UnsupportedProviderError:
		var target *providers.UnsupportedProviderError
		if !errors.As(err, &target) {
			t.Fatalf("expected UnsupportedProviderError, got %T: %v", err, err)
		}
	case *providers.NotInitializedError:
		var target *providers.NotInitializedError
		if !errors.As(err, &target) {
			t.Fatalf("expected NotInitializedError, got %T: %v", err, err)
		}
	default:
		t.Fatalf("unknown error type: %T", expectedType)
	}
}

// AssertEqual fails the test if got != expected.
func AssertEqual(t *testing.T, got, expected interface{}) {
	t.Helper()
	if got != expected {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

// AssertTrue fails the test if condition is false.
func AssertTrue(t *testing.T, condition bool, message string) {
	t.Helper()
	if !condition {
		t.Fatalf("assertion failed: %s", message)
	}
}

// AssertFalse fails the test if condition is true.
func AssertFalse(t *testing.T, condition bool, message string) {
	t.Helper()
	if condition {
		t.Fatalf("assertion failed: %s", message)
	}
}

// AssertContains fails the test if haystack doesn't contain needle.
func AssertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if needle == "" {
		t.Fatal("needle is empty")
	}
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}

// WithTimeout runs a function with a timeout context.
func WithTimeout(t *testing.T, timeout time.Duration, fn func(ctx context.Context)) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		fn(ctx)
		close(done)
	}()

	select {
	case <-done:
		// Success
	case <-ctx.Done():
		t.Fatalf("test timeout after %s", timeout)
	}
}

// WaitForCondition waits for a condition to become true within a timeout.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}

		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s: %s", timeout, message)
		}

		<-ticker.C
	}
}
