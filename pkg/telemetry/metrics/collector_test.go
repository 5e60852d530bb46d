package metrics

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	internal "nimbus-hq/callisto/internal/providers"
	"nimbus-hq/callisto/pkg/providerfactory"
	"nimbus-hq/callisto/pkg/providers"
)

func gatherFamily(t *testing.T, c *Collector, name string) *dto.MetricFamily {
	t.Helper()
	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func counterValue(mf *dto.MetricFamily, labels map[string]string) float64 {
	if mf == nil {
		return 0
	}
	for _, m := range mf.GetMetric() {
		matched := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				matched = false
				break
			}
		}
		if matched {
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			if m.GetGauge() != nil {
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func TestCollectorRecordCall(t *testing.T) {
	c := NewCollector(Config{}, nil)

	c.RecordCall("openai", "complete", 120*time.Millisecond)
	c.RecordCall("openai", "complete", 80*time.Millisecond)

	mf := gatherFamily(t, c, "callisto_provider_requests_total")
	got := counterValue(mf, map[string]string{"provider": "openai", "op": "complete"})
	if got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}
}

func TestCollectorRecordErrorTypes(t *testing.T) {
	c := NewCollector(Config{}, nil)

	c.RecordError("openai", "complete", ErrorType(&providers.TransientError{}))
	c.RecordError("openai", "complete", ErrorType(&providers.TransientError{}))
	c.RecordError("openai", "complete", ErrorType(&providers.PermanentError{}))

	mf := gatherFamily(t, c, "callisto_provider_errors_total")
	if got := counterValue(mf, map[string]string{"error_type": "transient"}); got != 2 {
		t.Errorf("expected 2 transient errors, got %v", got)
	}
	if got := counterValue(mf, map[string]string{"error_type": "permanent"}); got != 1 {
		t.Errorf("expected 1 permanent error, got %v", got)
	}
}

func TestCollectorRecordUsage(t *testing.T) {
	c := NewCollector(Config{}, nil)

	c.RecordUsage("anthropic", providers.TokenUsage{PromptTokens: 10, CompletionTokens: 20})
	c.RecordUsage("anthropic", providers.TokenUsage{PromptTokens: 5, CompletionTokens: 5})

	mf := gatherFamily(t, c, "callisto_provider_tokens_total")
	if got := counterValue(mf, map[string]string{"kind": "prompt"}); got != 15 {
		t.Errorf("expected 15 prompt tokens, got %v", got)
	}
	if got := counterValue(mf, map[string]string{"kind": "completion"}); got != 25 {
		t.Errorf("expected 25 completion tokens, got %v", got)
	}
}

func TestCollectorRecordHealth(t *testing.T) {
	c := NewCollector(Config{}, nil)

	c.RecordHealth(providers.HealthReport{Provider: "openai", Status: providers.StatusHealthy, LatencyMS: 120})
	c.RecordHealth(providers.HealthReport{Provider: "anthropic", Status: providers.StatusDegraded})
	c.RecordHealth(providers.HealthReport{Provider: "local", Status: providers.StatusUnhealthy})

	mf := gatherFamily(t, c, "callisto_provider_health")
	if got := counterValue(mf, map[string]string{"provider": "openai"}); got != 1 {
		t.Errorf("expected 1 for healthy, got %v", got)
	}
	if got := counterValue(mf, map[string]string{"provider": "anthropic"}); got != 0.5 {
		t.Errorf("expected 0.5 for degraded, got %v", got)
	}
	if got := counterValue(mf, map[string]string{"provider": "local"}); got != 0 {
		t.Errorf("expected 0 for unhealthy, got %v", got)
	}
}

func TestCollectorCustomNamespace(t *testing.T) {
	c := NewCollector(Config{Namespace: "custom"}, nil)
	c.RecordRetry("openai", "complete")

	if mf := gatherFamily(t, c, "custom_provider_retries_total"); mf == nil {
		t.Error("expected metric under custom namespace")
	}
	if mf := gatherFamily(t, c, "callisto_provider_retries_total"); mf != nil {
		t.Error("did not expect metric under default namespace")
	}
}

func TestCollectorsUseIsolatedRegistries(t *testing.T) {
	a := NewCollector(Config{}, nil)
	b := NewCollector(Config{}, nil)

	a.RecordRetry("openai", "complete")

	mf := gatherFamily(t, b, "callisto_provider_retries_total")
	if counterValue(mf, nil) != 0 {
		t.Error("expected collectors to be isolated")
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&providers.TimeoutError{}, "timeout"},
		{&providers.TransientError{}, "transient"},
		{&providers.PermanentError{}, "permanent"},
		{&providers.CapabilityError{}, "capability"},
		{&providers.ParseError{}, "parse"},
		{&providers.RetriesExhaustedError{}, "retries_exhausted"},
		{errors.New("anything else"), "other"},
	}

	for _, tt := range tests {
		if got := ErrorType(tt.err); got != tt.want {
			t.Errorf("ErrorType(%T) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCallObserverFeedsInstruments(t *testing.T) {
	c := NewCollector(Config{}, nil)
	obs := c.CallObserver()

	obs.ObserveCall("openai", "complete", 120*time.Millisecond)
	obs.ObserveError("openai", "complete", &providers.TransientError{StatusCode: 500})
	obs.ObserveRetry("openai", "complete")
	obs.ObserveUsage("openai", providers.TokenUsage{PromptTokens: 10, CompletionTokens: 20})

	mf := gatherFamily(t, c, "callisto_provider_requests_total")
	if got := counterValue(mf, map[string]string{"provider": "openai", "op": "complete"}); got != 1 {
		t.Errorf("expected 1 request, got %v", got)
	}
	mf = gatherFamily(t, c, "callisto_provider_errors_total")
	if got := counterValue(mf, map[string]string{"error_type": "transient"}); got != 1 {
		t.Errorf("expected 1 transient error, got %v", got)
	}
	mf = gatherFamily(t, c, "callisto_provider_retries_total")
	if got := counterValue(mf, map[string]string{"provider": "openai"}); got != 1 {
		t.Errorf("expected 1 retry, got %v", got)
	}
	mf = gatherFamily(t, c, "callisto_provider_tokens_total")
	if got := counterValue(mf, map[string]string{"kind": "prompt"}); got != 10 {
		t.Errorf("expected 10 prompt tokens, got %v", got)
	}
}

func TestInstrumentedAdapterMovesRequestCounter(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()
	ms.SetResponse("/chat/completions", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockOpenAIResponse("hello", "test-model"),
	})

	manager := providerfactory.NewManager()
	if err := manager.Add("local", providers.AdapterOptions{BaseURL: ms.URL()}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	c := NewCollector(Config{}, nil)
	manager.InstrumentAll(c.CallObserver())

	adapter, err := manager.Get("local")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := adapter.Complete(context.Background(),
		[]providers.Message{internal.TestMessage(providers.RoleUser, "hi")},
		internal.TestCompletionConfig("")); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	mf := gatherFamily(t, c, "callisto_provider_requests_total")
	if got := counterValue(mf, map[string]string{"provider": "local", "op": "complete"}); got != 1 {
		t.Errorf("expected 1 request recorded, got %v", got)
	}
	mf = gatherFamily(t, c, "callisto_provider_tokens_total")
	if got := counterValue(mf, map[string]string{"provider": "local", "kind": "prompt"}); got == 0 {
		t.Error("expected prompt token usage recorded")
	}
}
