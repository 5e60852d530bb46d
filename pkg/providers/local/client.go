package local

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"nimbus-hq/callisto/pkg/providers"
)

const (
	// DefaultBaseURL targets a local Ollama instance's OpenAI-compatible
	// surface. LM Studio, vLLM and similar servers expose the same shape.
	DefaultBaseURL = "http://localhost:11434/v1"

	// DefaultModel is used when a call does not name a model.
	DefaultModel = "llama3.1"

	// DefaultEmbeddingModel is used for Embed calls without a model.
	DefaultEmbeddingModel = "nomic-embed-text"

	// maxEmbedChars is the defensive character budget for embedding input;
	// local embedding models have far smaller context windows.
	maxEmbedChars = 4000
)

// knownModels is hand-maintained; local deployments vary, these are the
// commonly pulled ones.
var knownModels = []string{
	"llama3.1",
	"llama3.2",
	"mistral",
	"qwen2.5",
	"nomic-embed-text",
}

// Adapter implements providers.Adapter against any OpenAI-compatible local
// server (Ollama, LM Studio, vLLM). Local models have no native tool-calling
// channel, so tool declarations are rendered into the system prompt and the
// model's reply is scanned for a delimited function-call block.
type Adapter struct {
	*providers.HTTPAdapter
}

// New creates a local adapter. No API key is required; if one is supplied it
// is sent as a bearer token for servers that check it.
func New(opts providers.AdapterOptions) (providers.Adapter, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxRetries == 0 {
		// Local servers fail fast; a long retry budget just delays the
		// caller.
		opts.MaxRetries = 1
	}

	a := &Adapter{
		HTTPAdapter: providers.NewHTTPAdapter("local", opts),
	}

	slog.Info("local adapter initialized",
		"base_url", opts.BaseURL,
		"model", opts.Model,
	)

	return a, nil
}

// headers builds request headers; authentication is optional.
func (a *Adapter) headers() map[string]string {
	h := map[string]string{}
	if a.Options().APIKey != "" {
		h["Authorization"] = "Bearer " + a.Options().APIKey
	}
	return h
}

// chatRequest is the OpenAI-compatible wire shape local servers accept.
// Tool fields are omitted on purpose; see the package comment.
type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature,omitempty"`
	TopP             float64       `json:"top_p,omitempty"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	FrequencyPenalty float64       `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64       `json:"presence_penalty,omitempty"`
	Stop             []string      `json:"stop,omitempty"`
	Seed             *int          `json:"seed,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// transformRequest builds the wire request. Tool declarations become a
// system-prompt instruction appended to the first system message (or a new
// leading one when the conversation has none).
func transformRequest(messages []providers.Message, config providers.CompletionConfig, defaultModel string) *chatRequest {
	model := config.Model
	if model == "" {
		model = defaultModel
	}

	req := &chatRequest{
		Model:            model,
		Temperature:      config.Temperature,
		TopP:             config.TopP,
		MaxTokens:        config.MaxTokens,
		FrequencyPenalty: config.FrequencyPenalty,
		PresencePenalty:  config.PresencePenalty,
		Stop:             config.Stop,
		Seed:             config.Seed,
		Messages:         make([]chatMessage, 0, len(messages)+1),
	}

	instructions := toolPrompt(config.Tools)

	systemSeen := false
	for _, msg := range messages {
		wire := chatMessage{Role: msg.Role, Content: msg.Content, Name: msg.Name}
		if msg.Role == providers.RoleSystem && !systemSeen {
			systemSeen = true
			wire.Content += instructions
		}
		req.Messages = append(req.Messages, wire)
	}

	if !systemSeen && instructions != "" {
		req.Messages = append([]chatMessage{{
			Role:    providers.RoleSystem,
			Content: instructions,
		}}, req.Messages...)
	}

	return req
}

// Complete implements the completion side of the contract.
func (a *Adapter) Complete(ctx context.Context, messages []providers.Message, config providers.CompletionConfig) (*providers.CompletionResult, error) {
	if len(messages) == 0 {
		return nil, &providers.PermanentError{
			Provider: a.Name(),
			Message:  "messages must not be empty",
		}
	}

	wireReq := transformRequest(messages, config, a.Options().Model)
	url := fmt.Sprintf("%s/chat/completions", a.Options().BaseURL)

	var result *providers.CompletionResult
	err := a.WithRetry(ctx, "complete", a.Deadline(config.Timeout), func(ctx context.Context) error {
		var wireResp chatResponse
		raw, err := a.DoJSON(ctx, http.MethodPost, url, wireReq, &wireResp, a.headers())
		if err != nil {
			return err
		}

		if len(wireResp.Choices) == 0 {
			return &providers.ParseError{
				Provider:    a.Name(),
				RawResponse: string(raw),
				Cause:       fmt.Errorf("no choices in response"),
			}
		}

		choice := wireResp.Choices[0]
		result = &providers.CompletionResult{
			Content:      choice.Message.Content,
			Model:        wireResp.Model,
			FinishReason: choice.FinishReason,
			Usage: providers.TokenUsage{
				PromptTokens:     wireResp.Usage.PromptTokens,
				CompletionTokens: wireResp.Usage.CompletionTokens,
				TotalTokens:      wireResp.Usage.TotalTokens,
			},
			Raw: raw,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort extraction of the embedded function-call block.
	if call, remainder, ok := extractFunctionCall(result.Content); ok {
		result.FunctionCall = call
		result.Content = remainder
		result.FinishReason = providers.FinishReasonFunctionCall
	}

	a.RecordUsage(result.Usage)

	slog.Debug("completion succeeded",
		"provider", a.Name(),
		"model", result.Model,
		"tokens", result.Usage.TotalTokens,
		"function_call", result.FunctionCall != nil,
	)

	return result, nil
}

// Embed implements the embedding side of the contract via the
// OpenAI-compatible embeddings endpoint.
func (a *Adapter) Embed(ctx context.Context, text string, model string) (providers.Embedding, error) {
	if model == "" {
		model = DefaultEmbeddingModel
	}

	wireReq := &embeddingRequest{
		Model: model,
		Input: providers.NormalizeEmbedText(text, maxEmbedChars),
	}
	url := fmt.Sprintf("%s/embeddings", a.Options().BaseURL)

	var vector providers.Embedding
	err := a.WithRetry(ctx, "embed", a.Deadline(0), func(ctx context.Context) error {
		var wireResp embeddingResponse
		raw, err := a.DoJSON(ctx, http.MethodPost, url, wireReq, &wireResp, a.headers())
		if err != nil {
			return err
		}

		if len(wireResp.Data) == 0 {
			return &providers.ParseError{
				Provider:    a.Name(),
				RawResponse: string(raw),
				Cause:       fmt.Errorf("no embedding data in response"),
			}
		}

		vector = wireResp.Data[0].Embedding
		a.RecordUsage(providers.TokenUsage{
			PromptTokens: wireResp.Usage.PromptTokens,
			TotalTokens:  wireResp.Usage.TotalTokens,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return vector, nil
}

// HealthCheck probes with a one-word embedding; no credential is required
// for local servers.
func (a *Adapter) HealthCheck(ctx context.Context) providers.HealthReport {
	return a.RunHealthProbe(ctx, false, func(ctx context.Context) error {
		vector, err := a.Embed(ctx, "ping", "")
		if err != nil {
			return err
		}
		if len(vector) == 0 {
			return fmt.Errorf("empty embedding returned")
		}
		return nil
	})
}

// Models returns the hand-maintained model list.
func (a *Adapter) Models() []string {
	models := make([]string, len(knownModels))
	copy(models, knownModels)
	return models
}
