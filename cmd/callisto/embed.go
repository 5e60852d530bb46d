package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nimbus-hq/callisto/pkg/cache"
	"nimbus-hq/callisto/pkg/cli"
	"nimbus-hq/callisto/pkg/config"
	"nimbus-hq/callisto/pkg/providerfactory"
	"nimbus-hq/callisto/pkg/providers"
)

var embedFlags struct {
	provider string
	model    string
	format   string
	noCache  bool
}

var embedCmd = &cobra.Command{
	Use:   "embed [text]",
	Short: "Generate an embedding vector",
	Long: `Generate an embedding for the given text. When the configuration
enables the embedding cache, repeated calls for the same provider, model,
and text are served from the cache.

Examples:
  # Embed with the configured default provider
  callisto embed "machine learning"

  # Full vector as JSON
  callisto embed --format json "machine learning"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVarP(&embedFlags.provider, "provider", "p", "", "provider name (default from config)")
	embedCmd.Flags().StringVarP(&embedFlags.model, "model", "m", "", "embedding model override")
	embedCmd.Flags().StringVar(&embedFlags.format, "format", "text", "output format: text, json")
	embedCmd.Flags().BoolVar(&embedFlags.noCache, "no-cache", false, "bypass the embedding cache")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(embedFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	name := resolveProvider(embedFlags.provider, cfg)
	adapter, err := providerfactory.New(name, cfg.AdapterOptions(name))
	if err != nil {
		return cli.NewCommandError("embed", err)
	}

	text := strings.Join(args, " ")
	ctx := context.Background()

	var embedding providers.Embedding
	if cfg.Cache.Enabled && !embedFlags.noCache {
		store, err := openCacheStore(cfg.Cache)
		if err != nil {
			return cli.NewCommandError("embed", err)
		}
		defer store.Close()

		embedding, err = cache.NewEmbedder(adapter, store).Embed(ctx, text, embedFlags.model)
		if err != nil {
			return cli.NewCommandError("embed", err)
		}
	} else {
		embedding, err = adapter.Embed(ctx, text, embedFlags.model)
		if err != nil {
			return cli.NewCommandError("embed", err)
		}
	}

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, map[string]interface{}{
			"provider":   adapter.Name(),
			"model":      embedFlags.model,
			"dimensions": len(embedding),
			"embedding":  embedding,
		})
	}
	fmt.Printf("%d dimensions\n", len(embedding))
	return nil
}

// openCacheStore builds the configured embedding cache backend.
func openCacheStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return cache.NewSQLiteStore(cfg.SQLitePath)
	default:
		return cache.NewMemoryStoreWithConfig(cache.MemoryStoreConfig{
			MaxEntries: cfg.MaxEntries,
		}), nil
	}
}
