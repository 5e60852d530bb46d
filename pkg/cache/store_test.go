package cache

import (
	"context"
	"path/filepath"
	"testing"

	"nimbus-hq/callisto/pkg/providers"
)

// storeFactories builds each Store implementation against a temp dir so
// the shared contract tests run over all backends.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
			if err != nil {
				t.Fatalf("failed to create sqlite store: %v", err)
			}
			return store
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			ctx := context.Background()
			key := Key{Provider: "openai", Model: "text-embedding-3-small", Text: "hello world"}
			vector := providers.Embedding{0.1, 0.2, 0.3}

			if _, ok, err := store.Get(ctx, key); err != nil || ok {
				t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
			}

			if err := store.Put(ctx, key, vector); err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			got, ok, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !ok {
				t.Fatal("expected hit after Put")
			}
			if len(got) != 3 || got[0] != 0.1 || got[2] != 0.3 {
				t.Errorf("unexpected vector %v", got)
			}

			n, err := store.Len(ctx)
			if err != nil {
				t.Fatalf("Len failed: %v", err)
			}
			if n != 1 {
				t.Errorf("expected 1 entry, got %d", n)
			}
		})
	}
}

func TestStoreKeyIsolation(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			ctx := context.Background()
			base := Key{Provider: "openai", Model: "m", Text: "same text"}

			if err := store.Put(ctx, base, providers.Embedding{1}); err != nil {
				t.Fatal(err)
			}

			// Same text under a different provider or model is a miss.
			otherProvider := base
			otherProvider.Provider = "local"
			if _, ok, _ := store.Get(ctx, otherProvider); ok {
				t.Error("provider should partition the key space")
			}

			otherModel := base
			otherModel.Model = "m2"
			if _, ok, _ := store.Get(ctx, otherModel); ok {
				t.Error("model should partition the key space")
			}
		})
	}
}

func TestStoreReplace(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			ctx := context.Background()
			key := Key{Provider: "p", Model: "m", Text: "t"}

			if err := store.Put(ctx, key, providers.Embedding{1, 2}); err != nil {
				t.Fatal(err)
			}
			if err := store.Put(ctx, key, providers.Embedding{9}); err != nil {
				t.Fatal(err)
			}

			got, ok, err := store.Get(ctx, key)
			if err != nil || !ok {
				t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
			}
			if len(got) != 1 || got[0] != 9 {
				t.Errorf("expected replacement to win, got %v", got)
			}

			if n, _ := store.Len(ctx); n != 1 {
				t.Errorf("expected 1 entry after replace, got %d", n)
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			ctx := context.Background()
			key := Key{Provider: "p", Model: "m", Text: "t"}

			if err := store.Put(ctx, key, providers.Embedding{1}); err != nil {
				t.Fatal(err)
			}
			if err := store.Delete(ctx, key); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, ok, _ := store.Get(ctx, key); ok {
				t.Error("expected miss after delete")
			}

			// Deleting a missing key is not an error.
			if err := store.Delete(ctx, key); err != nil {
				t.Errorf("double delete should be a no-op, got %v", err)
			}
		})
	}
}

func TestMemoryStoreEviction(t *testing.T) {
	store := NewMemoryStoreWithConfig(MemoryStoreConfig{MaxEntries: 3})
	defer store.Close()

	ctx := context.Background()
	for _, text := range []string{"a", "b", "c", "d"} {
		key := Key{Provider: "p", Model: "m", Text: text}
		if err := store.Put(ctx, key, providers.Embedding{1}); err != nil {
			t.Fatal(err)
		}
	}

	n, _ := store.Len(ctx)
	if n != 3 {
		t.Errorf("expected eviction to hold the store at 3 entries, got %d", n)
	}
}

func TestMemoryStoreCopyOnRead(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	key := Key{Provider: "p", Model: "m", Text: "t"}
	if err := store.Put(ctx, key, providers.Embedding{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	got, _, _ := store.Get(ctx, key)
	got[0] = 99

	again, _, _ := store.Get(ctx, key)
	if again[0] != 1 {
		t.Error("mutating a returned vector must not affect the cache")
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()
	key := Key{Provider: "openai", Model: "m", Text: "persist me"}

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, key, providers.Embedding{4, 5}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected persisted entry, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[1] != 5 {
		t.Errorf("unexpected vector %v", got)
	}
}
