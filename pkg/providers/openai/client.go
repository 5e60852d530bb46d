package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"nimbus-hq/callisto/pkg/providers"
)

const (
	// DefaultBaseURL is the OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when a call does not name a model.
	DefaultModel = "gpt-4o-mini"

	// DefaultEmbeddingModel is used for Embed calls without a model.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// maxEmbedChars is the defensive character budget for embedding input.
	maxEmbedChars = 8000
)

// knownModels is hand-maintained. A live model query would couple
// availability to a second network round trip.
var knownModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4-turbo",
	"gpt-3.5-turbo",
	"text-embedding-3-small",
	"text-embedding-3-large",
	"text-embedding-ada-002",
}

// Adapter implements providers.Adapter against the OpenAI API.
// It supports chat completions with native tool calling and text embeddings.
type Adapter struct {
	*providers.HTTPAdapter
}

// New creates an OpenAI adapter. The API key may be empty; calls will then
// fail with the provider's authentication error and HealthCheck reports
// unhealthy without a network round trip.
func New(opts providers.AdapterOptions) (providers.Adapter, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	a := &Adapter{
		HTTPAdapter: providers.NewHTTPAdapter("openai", opts),
	}

	slog.Info("openai adapter initialized",
		"base_url", opts.BaseURL,
		"model", opts.Model,
		"credentials_configured", a.CredentialsConfigured(),
	)

	return a, nil
}

// headers builds the authentication headers for every request.
func (a *Adapter) headers() map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + a.Options().APIKey,
	}
	if a.Options().OrgID != "" {
		h["OpenAI-Organization"] = a.Options().OrgID
	}
	return h
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

		result, err = transformResponse(&wireResp, raw)
		if err != nil {
			return &providers.ParseError{
				Provider:    a.Name(),
				RawResponse: string(raw),
				Cause:       err,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.RecordUsage(result.Usage)

	slog.Debug("completion succeeded",
		"provider", a.Name(),
		"model", result.Model,
		"tokens", result.Usage.TotalTokens,
		"finish_reason", result.FinishReason,
	)

	return result, nil
}

// Embed implements the embedding side of the contract.
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

// HealthCheck probes with the cheapest real call: a one-word embedding.
func (a *Adapter) HealthCheck(ctx context.Context) providers.HealthReport {
	return a.RunHealthProbe(ctx, true, func(ctx context.Context) error {
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
