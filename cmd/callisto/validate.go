package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nimbus-hq/callisto/pkg/cli"
	"nimbus-hq/callisto/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply environment variable overrides,
and report whether the result is valid.

Examples:
  callisto validate
  callisto validate --config /etc/callisto/callisto.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	fmt.Println("configuration valid")
	fmt.Printf("  default provider: %s\n", cfg.DefaultProvider)
	fmt.Printf("  fallback provider: %s\n", cfg.FallbackProvider)
	fmt.Printf("  configured providers: %d\n", len(cfg.Providers))
	if cfg.Cache.Enabled {
		fmt.Printf("  embedding cache: %s\n", cfg.Cache.Backend)
	}
	if cfg.Health.Enabled {
		fmt.Printf("  health schedule: %s\n", cfg.Health.Schedule)
	}
	return nil
}
