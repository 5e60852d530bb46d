package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"nimbus-hq/callisto/pkg/providers"
)

const (
	// DefaultBaseURL is the Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultModel is used when a call does not name a model.
	DefaultModel = "claude-3-5-haiku-20241022"

	// apiVersion is the anthropic-version header value.
	apiVersion = "2023-06-01"
)

// knownModels is hand-maintained; see the providers.Adapter contract.
var knownModels = []string{
	"claude-3-5-sonnet-20241022",
	"claude-3-5-haiku-20241022",
	"claude-3-opus-20240229",
	"claude-3-haiku-20240307",
}

// Adapter implements providers.Adapter against the Anthropic Messages API.
//
// Anthropic has no embeddings endpoint, so Embed always fails with a
// CapabilityError; the compatibility facade falls back to an
// embedding-capable provider for those calls.
type Adapter struct {
	*providers.HTTPAdapter
}

// New creates an Anthropic adapter.
func New(opts providers.AdapterOptions) (providers.Adapter, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	a := &Adapter{
		HTTPAdapter: providers.NewHTTPAdapter("anthropic", opts),
	}

	slog.Info("anthropic adapter initialized",
		"base_url", opts.BaseURL,
		"model", opts.Model,
		"credentials_configured", a.CredentialsConfigured(),
	)

	return a, nil
}

// headers builds the authentication headers for every request.
func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.Options().APIKey,
		"anthropic-version": apiVersion,
	}
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
	url := fmt.Sprintf("%s/v1/messages", a.Options().BaseURL)

	var result *providers.CompletionResult
	err := a.WithRetry(ctx, "complete", a.Deadline(config.Timeout), func(ctx context.Context) error {
		var wireResp messagesResponse
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

// Embed reports the missing capability; Anthropic serves no embeddings.
func (a *Adapter) Embed(ctx context.Context, text string, model string) (providers.Embedding, error) {
	return nil, &providers.CapabilityError{
		Provider:   a.Name(),
		Capability: "embeddings",
	}
}

// HealthCheck probes with a minimal one-token completion, the cheapest real
// call this provider offers.
func (a *Adapter) HealthCheck(ctx context.Context) providers.HealthReport {
	return a.RunHealthProbe(ctx, true, func(ctx context.Context) error {
		result, err := a.Complete(ctx, []providers.Message{
			{Role: providers.RoleUser, Content: "ping"},
		}, providers.CompletionConfig{MaxTokens: 1})
		if err != nil {
			return err
		}
		if result.Content == "" && len(result.ToolCalls) == 0 {
			return fmt.Errorf("empty completion returned")
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
