package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nimbus-hq/callisto/pkg/cli"
	"nimbus-hq/callisto/pkg/compat"
)

var completeFlags struct {
	provider    string
	model       string
	system      string
	maxTokens   int
	temperature float64
	timeout     float64
	format      string
}

var completeCmd = &cobra.Command{
	Use:   "complete [prompt]",
	Short: "Send a one-shot completion request",
	Long: `Send a single-turn completion to the selected provider and print
the assistant response.

Examples:
  # Use the configured default provider
  callisto complete "What is the capital of France?"

  # Pick a provider and model explicitly
  callisto complete --provider anthropic --model claude-3-5-haiku-20241022 "Hello"

  # Full response envelope as JSON
  callisto complete --format json "Hello"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)

	completeCmd.Flags().StringVarP(&completeFlags.provider, "provider", "p", "", "provider name (default from config)")
	completeCmd.Flags().StringVarP(&completeFlags.model, "model", "m", "", "model override")
	completeCmd.Flags().StringVar(&completeFlags.system, "system", "", "system prompt")
	completeCmd.Flags().IntVar(&completeFlags.maxTokens, "max-tokens", 0, "maximum completion tokens")
	completeCmd.Flags().Float64Var(&completeFlags.temperature, "temperature", 0, "sampling temperature")
	completeCmd.Flags().Float64Var(&completeFlags.timeout, "timeout", 0, "request timeout in seconds")
	completeCmd.Flags().StringVar(&completeFlags.format, "format", "text", "output format: text, json")
}

func runComplete(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(completeFlags.format)
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

	name := resolveProvider(completeFlags.provider, cfg)
	facade, err := compat.New(compat.Config{
		Provider:         name,
		FallbackProvider: cfg.FallbackProvider,
		Options:          cfg.AdapterOptions(name),
		FallbackOptions:  cfg.AdapterOptions(cfg.FallbackProvider),
	})
	if err != nil {
		return cli.NewCommandError("complete", err)
	}

	messages := make([]map[string]interface{}, 0, 2)
	if completeFlags.system != "" {
		messages = append(messages, map[string]interface{}{
			"role":    "system",
			"content": completeFlags.system,
		})
	}
	messages = append(messages, map[string]interface{}{
		"role":    "user",
		"content": strings.Join(args, " "),
	})

	envelope, err := facade.ChatCompletion(context.Background(), messages, compat.ChatOptions{
		Model:       completeFlags.model,
		MaxTokens:   completeFlags.maxTokens,
		Temperature: completeFlags.temperature,
		Timeout:     completeFlags.timeout,
	})
	if err != nil {
		return cli.NewCommandError("complete", err)
	}

	return cli.WriteCompletion(os.Stdout, format, envelope)
}
