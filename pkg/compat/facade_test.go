package compat

import (
	"context"
	"net/http"
	"strings"
	"testing"

	internal "nimbus-hq/callisto/internal/providers"
	"nimbus-hq/callisto/pkg/providers"
)

func newTestFacade(t *testing.T, provider, baseURL string) *Facade {
	t.Helper()
	f, err := New(Config{
		Provider: provider,
		Options:  internal.TestOptions(baseURL),
	})
	if err != nil {
		t.Fatalf("failed to create facade: %v", err)
	}
	return f
}

func TestChatCompletionEnvelope(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/chat/completions", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockOpenAIResponse("Hello there", "gpt-4o-mini"),
	})

	f := newTestFacade(t, "openai", ms.URL())

	resp, err := f.ChatCompletion(context.Background(),
		[]map[string]interface{}{
			{"role": "system", "content": "Be terse."},
			{"role": "user", "content": "Hi"},
		},
		ChatOptions{Model: "gpt-4o-mini"})
	internal.AssertNoError(t, err)

	id, _ := resp["id"].(string)
	internal.AssertTrue(t, strings.HasPrefix(id, "chatcmpl-"), "id should carry the chatcmpl prefix")
	internal.AssertEqual(t, resp["object"], "chat.completion")
	internal.AssertEqual(t, resp["model"], "gpt-4o-mini")
	internal.AssertEqual(t, resp["provider"], "openai")

	usage, ok := resp["usage"].(map[string]interface{})
	internal.AssertTrue(t, ok, "usage should be a mapping")
	internal.AssertEqual(t, usage["total_tokens"], 30)

	choices, ok := resp["choices"].([]map[string]interface{})
	internal.AssertTrue(t, ok, "choices should be present")
	internal.AssertEqual(t, len(choices), 1)

	message, ok := choices[0]["message"].(map[string]interface{})
	internal.AssertTrue(t, ok, "message should be a mapping")
	internal.AssertEqual(t, message["role"], providers.RoleAssistant)
	internal.AssertEqual(t, message["content"], "Hello there")
	internal.AssertEqual(t, choices[0]["finish_reason"], providers.FinishReasonStop)
}

func TestChatCompletionUniqueIDs(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/chat/completions", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockOpenAIResponse("ok", "gpt-4o-mini"),
	})

	f := newTestFacade(t, "openai", ms.URL())
	msgs := []map[string]interface{}{{"role": "user", "content": "Hi"}}

	first, err := f.ChatCompletion(context.Background(), msgs, ChatOptions{})
	internal.AssertNoError(t, err)
	second, err := f.ChatCompletion(context.Background(), msgs, ChatOptions{})
	internal.AssertNoError(t, err)

	if first["id"] == second["id"] {
		t.Error("expected unique envelope ids per call")
	}
}

func TestChatCompletionFunctionCallInEnvelope(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/chat/completions", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockOpenAIToolCallResponse("get_weather", `{"city":"Oslo"}`, "gpt-4o"),
	})

	f := newTestFacade(t, "openai", ms.URL())
	resp, err := f.ChatCompletion(context.Background(),
		[]map[string]interface{}{{"role": "user", "content": "weather?"}},
		ChatOptions{})
	internal.AssertNoError(t, err)

	choices := resp["choices"].([]map[string]interface{})
	message := choices[0]["message"].(map[string]interface{})

	fc, ok := message["function_call"].(map[string]interface{})
	internal.AssertTrue(t, ok, "expected function_call in message")
	internal.AssertEqual(t, fc["name"], "get_weather")

	if _, ok := message["tool_calls"]; !ok {
		t.Error("expected tool_calls in message")
	}
}

func TestChatCompletionValidation(t *testing.T) {
	f := newTestFacade(t, "openai", "http://localhost:0")

	_, err := f.ChatCompletion(context.Background(), nil, ChatOptions{})
	internal.AssertError(t, err)

	_, err = f.ChatCompletion(context.Background(),
		[]map[string]interface{}{{"content": "no role"}}, ChatOptions{})
	internal.AssertError(t, err)
	internal.AssertContains(t, err.Error(), "missing role")
}

func TestEmbeddingDirect(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/embeddings", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockEmbeddingResponse(8, "text-embedding-3-small"),
	})

	f := newTestFacade(t, "openai", ms.URL())
	vector, err := f.Embedding(context.Background(), "hello", "")
	internal.AssertNoError(t, err)
	internal.AssertEqual(t, len(vector), 8)
}

func TestEmbeddingCapabilityFallback(t *testing.T) {
	// Primary has no embeddings endpoint; fallback serves them.
	fallbackServer := internal.NewMockServer()
	defer fallbackServer.Close()

	fallbackServer.SetResponse("/embeddings", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockEmbeddingResponse(8, "text-embedding-3-small"),
	})

	f, err := New(Config{
		Provider:         "anthropic",
		Options:          internal.TestOptions("http://localhost:0"),
		FallbackProvider: "openai",
		FallbackOptions:  internal.TestOptions(fallbackServer.URL()),
	})
	internal.AssertNoError(t, err)

	vector, err := f.Embedding(context.Background(), "some text", "")
	internal.AssertNoError(t, err)
	internal.AssertEqual(t, len(vector), 8)
	internal.AssertTrue(t, fallbackServer.GetRequestCount() > 0, "fallback should have been called")
}

func TestEmbeddingNonCapabilityErrorsDoNotFallBack(t *testing.T) {
	primary := internal.NewMockServer()
	defer primary.Close()
	primary.SetResponse("/embeddings", internal.MockAuthError())

	fallbackServer := internal.NewMockServer()
	defer fallbackServer.Close()

	f, err := New(Config{
		Provider:        "openai",
		Options:         internal.TestOptions(primary.URL()),
		FallbackOptions: internal.TestOptions(fallbackServer.URL()),
	})
	internal.AssertNoError(t, err)

	_, err = f.Embedding(context.Background(), "text", "")
	internal.AssertErrorType(t, err, &providers.PermanentError{})
	internal.AssertEqual(t, fallbackServer.GetRequestCount(), 0)
}

func TestFacadeUninitialized(t *testing.T) {
	f, err := New(Config{Provider: "no-such-provider"})
	internal.AssertError(t, err)

	_, err = f.ChatCompletion(context.Background(),
		[]map[string]interface{}{{"role": "user", "content": "Hi"}}, ChatOptions{})
	internal.AssertErrorType(t, err, &providers.NotInitializedError{})

	_, err = f.Embedding(context.Background(), "text", "")
	internal.AssertErrorType(t, err, &providers.NotInitializedError{})

	report := f.HealthCheck(context.Background())
	internal.AssertEqual(t, report.Status, providers.StatusUnhealthy)

	internal.AssertEqual(t, f.ProviderName(), "")
}

func TestHealthCheckPassthrough(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/embeddings", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockEmbeddingResponse(4, "text-embedding-3-small"),
	})

	f := newTestFacade(t, "openai", ms.URL())
	report := f.HealthCheck(context.Background())

	internal.AssertEqual(t, report.Status, providers.StatusHealthy)
	internal.AssertEqual(t, report.Provider, "openai")
}

func TestProviderNameAndModels(t *testing.T) {
	f := newTestFacade(t, "openai", "http://localhost:0")
	internal.AssertEqual(t, f.ProviderName(), "openai")
	internal.AssertTrue(t, len(f.Models()) > 0, "expected model list")
}
