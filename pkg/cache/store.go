package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"nimbus-hq/callisto/pkg/providers"
)

// Store persists embedding vectors keyed by provider, model, and input
// text. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the cached embedding for the key, or ok=false on a miss.
	Get(ctx context.Context, key Key) (providers.Embedding, bool, error)

	// Put stores an embedding under the key, replacing any prior value.
	Put(ctx context.Context, key Key, embedding providers.Embedding) error

	// Delete removes a cached embedding. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key Key) error

	// Len returns the number of cached entries.
	Len(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// Key identifies a cached embedding. Text is hashed, never stored, so
// the key stays bounded regardless of input length.
type Key struct {
	Provider string
	Model    string
	Text     string
}

// digest returns the stable composite key used by stores.
func (k Key) digest() string {
	h := sha256.Sum256([]byte(k.Text))
	return k.Provider + ":" + k.Model + ":" + hex.EncodeToString(h[:])
}
