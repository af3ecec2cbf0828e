package telemetry_test

import (
	"context"
	"testing"

	"github.com/dev-tnsq/Proof-of-Sus/config"
	"github.com/dev-tnsq/Proof-of-Sus/telemetry"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "test-service", config.Tracing{Enabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

// TestSetupFollowsEnvironment runs the configuration the CLI loads with
// tracing explicitly switched off.
func TestSetupFollowsEnvironment(t *testing.T) {
	t.Setenv("PROOF_OF_SUS_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("PROOF_OF_SUS_OTEL_ENABLED", "false")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	shutdown, err := telemetry.Setup(context.Background(), "test-service", cfg.Tracing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupCreatesProvider(t *testing.T) {
	// Non-routable address so no actual export happens.
	cfg := config.Tracing{Endpoint: "http://192.0.2.1:4318", Enabled: true}

	shutdown, err := telemetry.Setup(context.Background(), "test-service", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestNoopShutdownIgnoresCancelledContext(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "noop-test", config.Tracing{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}
