// Package cache provides a pluggable embedding cache.
//
// Embedding requests are deterministic for a given provider, model,
// and input text, which makes them ideal cache candidates. Two Store
// implementations are provided:
//
//   - MemoryStore: fast, bounded, process-local (default)
//   - SQLiteStore: durable across restarts, single-instance
//
// The Embedder wrapper layers a Store over any provider adapter so
// callers keep the uniform Adapter interface.
package cache
