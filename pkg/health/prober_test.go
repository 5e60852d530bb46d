package health

import (
	"context"
	"net/http"
	"testing"
	"time"

	internal "nimbus-hq/callisto/internal/providers"
	"nimbus-hq/callisto/pkg/providerfactory"
	"nimbus-hq/callisto/pkg/providers"
	"nimbus-hq/callisto/pkg/telemetry/metrics"
)

func TestProberFirstSweepOnStart(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/embeddings", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockEmbeddingResponse(4, "nomic-embed-text"),
	})

	manager := providerfactory.NewManager()
	opts := internal.TestOptions(ms.URL())
	opts.APIKey = ""
	if err := manager.Add("local", opts); err != nil {
		t.Fatal(err)
	}

	prober := NewProber(manager, ProberConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := prober.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer prober.Stop()

	// Start blocks until the first sweep completes.
	reports, probedAt := prober.Snapshot()
	if probedAt.IsZero() {
		t.Fatal("expected a populated snapshot after Start")
	}
	report, ok := reports["local"]
	if !ok {
		t.Fatalf("expected a report for local, got %v", reports)
	}
	if report.Status != providers.StatusHealthy {
		t.Errorf("expected healthy, got %q (%s)", report.Status, report.Error)
	}
	if !prober.Healthy() {
		t.Error("expected Healthy() true with all providers up")
	}
	if !prober.IsRunning() {
		t.Error("expected prober to be running")
	}
	if prober.NextRun() == nil {
		t.Error("expected a scheduled next run")
	}
}

func TestProberUnhealthyProvider(t *testing.T) {
	manager := providerfactory.NewManager()
	// No credential: the probe reports unhealthy without a network call.
	t.Setenv("OPENAI_API_KEY", "")
	if err := manager.Add("openai", providers.AdapterOptions{}); err != nil {
		t.Fatal(err)
	}

	prober := NewProber(manager, ProberConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := prober.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer prober.Stop()

	if prober.Healthy() {
		t.Error("expected Healthy() false with an unhealthy provider")
	}

	reports, _ := prober.Snapshot()
	if reports["openai"].Status != providers.StatusUnhealthy {
		t.Errorf("expected unhealthy, got %q", reports["openai"].Status)
	}
}

func TestProberInvalidSchedule(t *testing.T) {
	prober := NewProber(providerfactory.NewManager(), ProberConfig{Schedule: "not a schedule"})

	err := prober.Start(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if prober.IsRunning() {
		t.Error("prober must not run with an invalid schedule")
	}
}

func TestProberHealthyBeforeFirstSweep(t *testing.T) {
	prober := NewProber(providerfactory.NewManager(), ProberConfig{})
	if prober.Healthy() {
		t.Error("expected Healthy() false before any sweep")
	}
}

func TestProberFeedsMetrics(t *testing.T) {
	ms := internal.NewMockServer()
	defer ms.Close()

	ms.SetResponse("/embeddings", internal.MockResponse{
		StatusCode: http.StatusOK,
		Body:       internal.MockEmbeddingResponse(4, "nomic-embed-text"),
	})

	manager := providerfactory.NewManager()
	opts := internal.TestOptions(ms.URL())
	opts.APIKey = ""
	if err := manager.Add("local", opts); err != nil {
		t.Fatal(err)
	}

	collector := metrics.NewCollector(metrics.Config{}, nil)

	prober := NewProber(manager, ProberConfig{Collector: collector})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := prober.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	prober.Stop()

	families, err := collector.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "callisto_provider_health" {
			found = true
		}
	}
	if !found {
		t.Error("expected provider health gauge to be published")
	}
}

func TestProberStopIdempotent(t *testing.T) {
	prober := NewProber(providerfactory.NewManager(), ProberConfig{ProbeTimeout: time.Second})

	// Stopping an unstarted prober is a no-op.
	prober.Stop()

	if err := prober.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	prober.Stop()
	prober.Stop()

	if prober.IsRunning() {
		t.Error("expected prober stopped")
	}
}
