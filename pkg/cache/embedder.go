package cache

import (
	"context"
	"log/slog"

	"nimbus-hq/callisto/pkg/providers"
)

// Embedder wraps a provider adapter and serves repeated embedding
// requests from a Store instead of the upstream API. Completion and
// health calls pass through unchanged.
type Embedder struct {
	providers.Adapter
	store  Store
	logger *slog.Logger
}

// NewEmbedder wraps the adapter with the given store.
func NewEmbedder(adapter providers.Adapter, store Store) *Embedder {
	return &Embedder{
		Adapter: adapter,
		store:   store,
		logger:  slog.Default().With("component", "cache.embedder", "provider", adapter.Name()),
	}
}

// Embed returns the cached vector when present, otherwise calls the
// underlying adapter and stores the result. Cache failures degrade to
// a plain upstream call rather than failing the request.
func (e *Embedder) Embed(ctx context.Context, text string, model string) (providers.Embedding, error) {
	key := Key{Provider: e.Adapter.Name(), Model: model, Text: text}

	cached, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Warn("embedding cache read failed", "error", err)
	} else if ok {
		return cached, nil
	}

	embedding, err := e.Adapter.Embed(ctx, text, model)
	if err != nil {
		return nil, err
	}

	if err := e.store.Put(ctx, key, embedding); err != nil {
		e.logger.Warn("embedding cache write failed", "error", err)
	}
	return embedding, nil
}
