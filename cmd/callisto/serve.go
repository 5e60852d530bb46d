package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"nimbus-hq/callisto/pkg/cli"
	"nimbus-hq/callisto/pkg/health"
	"nimbus-hq/callisto/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health and metrics endpoints",
	Long: `Start the periodic health prober and expose its results over HTTP.

Endpoints:
  /healthz   latest probe sweep as JSON (503 when any provider is unhealthy)
  /metrics   Prometheus metrics for requests, errors, retries, tokens, health

Examples:
  # Probe on the configured schedule, listen on the default port
  callisto serve

  # Custom listen address
  callisto serve --listen 0.0.0.0:9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", ":9090", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	manager, err := buildManager(cfg)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	collector := metrics.NewCollector(metrics.Config{
		Namespace: cfg.Metrics.Namespace,
	}, nil)
	manager.InstrumentAll(collector.CallObserver())

	prober := health.NewProber(manager, health.ProberConfig{
		Schedule:     cfg.Health.Schedule,
		ProbeTimeout: cfg.Health.ProbeTimeout,
		Collector:    collector,
	})

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	slog.Info("starting health prober", "schedule", cfg.Health.Schedule)
	if err := prober.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer prober.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		snapshot, probedAt := prober.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if !prober.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		cli.WriteJSON(w, map[string]interface{}{
			"healthy":   prober.Healthy(),
			"probed_at": probedAt,
			"providers": snapshot,
		})
	})

	server := &http.Server{
		Addr:              serveFlags.listenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "address", serveFlags.listenAddress)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return cli.NewCommandError("serve", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
