package config

import (
	"log/slog"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "proof-of-sus.db" {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.Players != 5 || cfg.Impostors != 1 || cfg.MaxPlayers != 15 || cfg.TasksToWin != 6 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Tracing.Active() {
		t.Fatal("tracing should be inactive without an endpoint")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROOF_OF_SUS_DB_PATH", "/tmp/game.db")
	t.Setenv("PROOF_OF_SUS_LOG_LEVEL", "debug")
	t.Setenv("PROOF_OF_SUS_PLAYERS", "8")
	t.Setenv("PROOF_OF_SUS_IMPOSTORS", "2")
	t.Setenv("PROOF_OF_SUS_OTEL_ENDPOINT", "http://localhost:4318")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/game.db" || cfg.Players != 8 || cfg.Impostors != 2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
	if !cfg.Tracing.Active() {
		t.Fatal("tracing should be active with an endpoint")
	}
}

func TestTracingExplicitlyDisabled(t *testing.T) {
	t.Setenv("PROOF_OF_SUS_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("PROOF_OF_SUS_OTEL_ENABLED", "false")

	var tr Tracing
	if err := ParseEnv(&tr); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if tr.Active() {
		t.Fatal("tracing should be off when disabled")
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("PROOF_OF_SUS_PLAYERS", "many")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

// TestValidateRejectsImpossibleRosters verifies the demo never starts with a
// roster the contract would refuse.
func TestValidateRejectsImpossibleRosters(t *testing.T) {
	cases := map[string]map[string]string{
		"too few players":  {"PROOF_OF_SUS_PLAYERS": "3"},
		"over capacity":    {"PROOF_OF_SUS_PLAYERS": "9", "PROOF_OF_SUS_MAX_PLAYERS": "8"},
		"no impostor":      {"PROOF_OF_SUS_IMPOSTORS": "0"},
		"all impostors":    {"PROOF_OF_SUS_IMPOSTORS": "5"},
		"zero tasks":       {"PROOF_OF_SUS_TASKS_TO_WIN": "0"},
		"tiny max players": {"PROOF_OF_SUS_MAX_PLAYERS": "3", "PROOF_OF_SUS_PLAYERS": "3"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
