package local

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	internal "nimbus-hq/callisto/internal/providers"
	"nimbus-hq/callisto/pkg/providers"
)

func newTestAdapter(t *testing.T, baseURL string) providers.Adapter {
	t.Helper()
	opts := internal.TestOptions(baseURL)
	opts.APIKey = "" // local servers need no credential
	adapter, err := New(opts)
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	return adapter
}

func TestCompleteSuccess(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/chat/completions", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockOpenAIResponse("local says hi", DefaultModel),
	})

	adapter := newTestAdapter(t, ms.URL())
	result, err := adapter.Complete(context.Background(),
		[]providers.Message{internal.TestMessage(providers.RoleUser, "Hi")},
		internal.TestCompletionConfig(""))
	internal.AssertNoError(t, err)
	internal.AssertEqual(t, result.Content, "local says hi")
}

func TestCompleteExtractsEmbeddedFunctionCall(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	reply := `Checking.<function_call>{"name":"get_weather","arguments":{"city":"Oslo"}}</function_call>`
	ms.SetResponse("/chat/completions", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockOpenAIResponse(reply, DefaultModel),
	})

	adapter := newTestAdapter(t, ms.URL())
	result, err := adapter.Complete(context.Background(),
		[]providers.Message{internal.TestMessage(providers.RoleUser, "weather?")},
		internal.TestCompletionConfig(""))
	internal.AssertNoError(t, err)

	if result.FunctionCall == nil {
		t.Fatal("expected extracted function call")
	}
	internal.AssertEqual(t, result.FunctionCall.Name, "get_weather")
	internal.AssertEqual(t, result.Content, "Checking.")
	internal.AssertEqual(t, result.FinishReason, providers.FinishReasonFunctionCall)
}

func TestCompleteMalformedBlockReturnsText(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	reply := `<function_call>not json</function_call>`
	ms.SetResponse("/chat/completions", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockOpenAIResponse(reply, DefaultModel),
	})

	adapter := newTestAdapter(t, ms.URL())
	result, err := adapter.Complete(context.Background(),
		[]providers.Message{internal.TestMessage(providers.RoleUser, "Hi")},
		internal.TestCompletionConfig(""))

	// Malformed model output degrades to plain text, never an error.
	internal.AssertNoError(t, err)
	if result.FunctionCall != nil {
		t.Error("expected no function call from malformed block")
	}
	internal.AssertEqual(t, result.Content, reply)
}

func TestCompleteInjectsToolInstructions(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/chat/completions", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockOpenAIResponse("ok", DefaultModel),
	})

	adapter := newTestAdapter(t, ms.URL())
	cfg := internal.TestCompletionConfig("")
	cfg.Tools = []providers.Tool{
		{
			Type: providers.ToolTypeFunction,
			Function: providers.FunctionDefinition{
				Name:        "get_weather",
				Description: "Look up weather",
			},
		},
	}

	_, err := adapter.Complete(context.Background(),
		[]providers.Message{internal.TestMessage(providers.RoleUser, "weather?")},
		cfg)
	internal.AssertNoError(t, err)

	_, body := ms.LastRequest()
	var sent chatRequest
	internal.AssertNoError(t, json.Unmarshal(body, &sent))

	// No system message in the conversation: a leading one is prepended
	// carrying the tool instructions.
	if len(sent.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sent.Messages))
	}
	internal.AssertEqual(t, sent.Messages[0].Role, providers.RoleSystem)
	internal.AssertContains(t, sent.Messages[0].Content, "get_weather")
	internal.AssertContains(t, sent.Messages[0].Content, callBlockOpen)

	// The wire request must not carry a native tools field.
	if strings.Contains(string(body), `"tools"`) {
		t.Error("local wire request must not contain native tools")
	}
}

func TestCompleteAppendsInstructionsToExistingSystem(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/chat/completions", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockOpenAIResponse("ok", DefaultModel),
	})

	adapter := newTestAdapter(t, ms.URL())
	cfg := internal.TestCompletionConfig("")
	cfg.Tools = []providers.Tool{
		{Type: providers.ToolTypeFunction, Function: providers.FunctionDefinition{Name: "calc"}},
	}

	_, err := adapter.Complete(context.Background(),
		[]providers.Message{
			internal.TestMessage(providers.RoleSystem, "Be terse."),
			internal.TestMessage(providers.RoleUser, "2+2?"),
		},
		cfg)
	internal.AssertNoError(t, err)

	_, body := ms.LastRequest()
	var sent chatRequest
	internal.AssertNoError(t, json.Unmarshal(body, &sent))

	internal.AssertEqual(t, len(sent.Messages), 2)
	internal.AssertContains(t, sent.Messages[0].Content, "Be terse.")
	internal.AssertContains(t, sent.Messages[0].Content, "calc")
}

func TestEmbedSuccess(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/embeddings", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockEmbeddingResponse(16, DefaultEmbeddingModel),
	})

	adapter := newTestAdapter(t, ms.URL())
	vector, err := adapter.Embed(context.Background(), "hello", "")
	internal.AssertNoError(t, err)
	internal.AssertEqual(t, len(vector), 16)
}

func TestHealthCheckNoCredentialRequired(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/embeddings", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockEmbeddingResponse(4, DefaultEmbeddingModel),
	})

	adapter := newTestAdapter(t, ms.URL())
	report := adapter.HealthCheck(context.Background())

	// Local servers are unauthenticated; a missing key must not fail
	// the probe.
	internal.AssertEqual(t, report.Status, providers.StatusHealthy)
	internal.AssertEqual(t, report.Provider, "local")
}

func TestHealthCheckServerDown(t *testing.T) {
	ms := internal.NewMockServer()
	ms.Close() // probe against a closed listener

	adapter := newTestAdapter(t, ms.URL())
	report := adapter.HealthCheck(context.Background())

	internal.AssertEqual(t, report.Status, providers.StatusUnhealthy)
	internal.AssertTrue(t, report.Error != "", "expected error detail")
}

func TestName(t *testing.T) {
	adapter := newTestAdapter(t, "http://localhost:0")
	internal.AssertEqual(t, adapter.Name(), "local")
}
