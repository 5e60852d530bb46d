// Package openai implements the OpenAI provider adapter.
//
// It implements the providers.Adapter contract against OpenAI's chat
// completions and embeddings endpoints:
//
//   - Chat completions with native tool/function calling
//   - Text embeddings (1536 dimensions for ada-class and 3-small models)
//   - Token usage tracking on both operations
//   - Health probing via a one-word embedding call
//
// # Basic Usage
//
//	adapter, err := openai.New(providers.AdapterOptions{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := adapter.Complete(ctx, []providers.Message{
//	    {Role: providers.RoleUser, Content: "Hello!"},
//	}, providers.CompletionConfig{Model: "gpt-4o"})
//
// # Request Transformation
//
// OpenAI's wire shape is the baseline for the provider-agnostic types, so
// messages pass through in caller order (system role included) and tools
// map 1:1. The adapter always requests a single choice (n=1).
//
// # Error Handling
//
// HTTP failures map onto the shared taxonomy: 401/403/4xx become
// PermanentError, 429 becomes TransientError with the Retry-After hint,
// and 5xx becomes TransientError. Transient failures retry with
// exponential backoff per the shared protocol.
package openai
