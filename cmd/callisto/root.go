package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"nimbus-hq/callisto/pkg/cli"
	"nimbus-hq/callisto/pkg/config"
	"nimbus-hq/callisto/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - uniform LLM provider adapter layer",
	Long: `Callisto wraps heterogeneous LLM providers (OpenAI, Anthropic,
OpenAI-compatible local runtimes) behind one completion and embedding
contract, with typed errors, retry with exponential backoff, and
per-provider health reporting.

The CLI exercises that layer directly:
  - Send one-shot completions and embeddings against any configured provider
  - Probe provider health on demand or serve it continuously
  - Validate a configuration file before deploying it`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "callisto.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configuration file with environment overrides
// applied. A missing file is only an error when the user asked for it
// explicitly; otherwise defaults plus environment variables apply.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if os.IsNotExist(err) && !rootCmd.PersistentFlags().Changed("config") {
			cfg := config.NewDefaultConfig()
			return cfg, nil
		}
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	return cfg, nil
}

// setupLogging installs the process-wide structured logger from config,
// with --verbose forcing debug level.
func setupLogging(cfg *config.Config) error {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:         level,
		Format:        cfg.Logging.Format,
		RedactSecrets: cfg.Logging.RedactSecrets,
		Writer:        os.Stderr,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// resolveProvider picks the provider for a command: the --provider flag
// when set, the configured default otherwise.
func resolveProvider(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.DefaultProvider
}
