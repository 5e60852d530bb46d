package cache

import (
	"context"
	"net/http"
	"testing"

	internal "nimbus-hq/callisto/internal/providers"
	"nimbus-hq/callisto/pkg/providers/openai"
)

func TestEmbedderCachesRepeatCalls(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/embeddings", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockEmbeddingResponse(8, "text-embedding-3-small"),
	})

	adapter, err := openai.New(internal.TestOptions(ms.URL()))
	internal.AssertNoError(t, err)

	embedder := NewEmbedder(adapter, NewMemoryStore())

	first, err := embedder.Embed(context.Background(), "hello", "")
	internal.AssertNoError(t, err)
	internal.AssertEqual(t, len(first), 8)
	internal.AssertEqual(t, ms.GetRequestCount(), 1)

	second, err := embedder.Embed(context.Background(), "hello", "")
	internal.AssertNoError(t, err)
	internal.AssertEqual(t, len(second), 8)

	// The repeat call is served from cache, not the upstream API.
	internal.AssertEqual(t, ms.GetRequestCount(), 1)
}

func TestEmbedderDistinctTextsMiss(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/embeddings", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockEmbeddingResponse(4, "text-embedding-3-small"),
	})

	adapter, err := openai.New(internal.TestOptions(ms.URL()))
	internal.AssertNoError(t, err)

	embedder := NewEmbedder(adapter, NewMemoryStore())

	_, err = embedder.Embed(context.Background(), "alpha", "")
	internal.AssertNoError(t, err)
	_, err = embedder.Embed(context.Background(), "beta", "")
	internal.AssertNoError(t, err)

	internal.AssertEqual(t, ms.GetRequestCount(), 2)
}

func TestEmbedderUpstreamErrorsPropagate(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/embeddings", internal.MockAuthError())

	adapter, err := openai.New(internal.TestOptions(ms.URL()))
	internal.AssertNoError(t, err)

	embedder := NewEmbedder(adapter, NewMemoryStore())

	_, err = embedder.Embed(context.Background(), "hello", "")
	internal.AssertError(t, err)

	// A failed call must not poison the cache.
	n, _ := embedder.store.Len(context.Background())
	internal.AssertEqual(t, n, 0)
}

func TestEmbedderPassthroughSurface(t *testing.T) {
	adapter, err := openai.New(internal.TestOptions("http://localhost:0"))
	internal.AssertNoError(t, err)

	embedder := NewEmbedder(adapter, NewMemoryStore())
	internal.AssertEqual(t, embedder.Name(), "openai")
	internal.AssertTrue(t, len(embedder.Models()) > 0, "expected model passthrough")
}
