package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nimbus-hq/callisto/pkg/cli"
	"nimbus-hq/callisto/pkg/config"
	"nimbus-hq/callisto/pkg/providerfactory"
	"nimbus-hq/callisto/pkg/providers"
)

var healthFlags struct {
	format  string
	timeout time.Duration
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe provider health",
	Long: `Probe every configured provider once and report the results.
Exits non-zero when any provider is unhealthy.

Examples:
  # Probe all providers from the config file
  callisto health

  # Machine-readable output
  callisto health --format json`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().StringVar(&healthFlags.format, "format", "text", "output format: text, json")
	healthCmd.Flags().DurationVar(&healthFlags.timeout, "timeout", 30*time.Second, "probe timeout")
}

func runHealth(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(healthFlags.format)
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

	manager, err := buildManager(cfg)
	if err != nil {
		return cli.NewCommandError("health", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthFlags.timeout)
	defer cancel()

	summary := manager.HealthSummary(ctx)
	if err := cli.WriteHealthSummary(os.Stdout, format, summary); err != nil {
		return err
	}

	for _, report := range summary {
		if report.Status == providers.StatusUnhealthy {
			return cli.NewCommandError("health", errUnhealthyProviders)
		}
	}
	return nil
}

var errUnhealthyProviders = errors.New("one or more providers are unhealthy")

// buildManager registers an adapter for every provider named in the config.
// An empty provider section falls back to all registered provider types so
// a bare environment still gets a meaningful probe.
func buildManager(cfg *config.Config) (*providerfactory.Manager, error) {
	manager := providerfactory.NewManager()

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	if len(names) == 0 {
		names = providerfactory.Registered()
	}

	for _, name := range names {
		if err := manager.Add(name, cfg.AdapterOptions(name)); err != nil {
			return nil, err
		}
	}
	return manager, nil
}
