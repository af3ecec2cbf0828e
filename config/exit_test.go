package config

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestReport(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		out  string
	}{
		{"success", nil, ExitOK, ""},
		{"usage", fmt.Errorf("%w (unknown command %q)", ErrUsage, "vote"), ExitUsage,
			"usage: proof-of-sus demo|state (unknown command \"vote\")\n"},
		{"config", fmt.Errorf("%w: %w", ErrInvalid, errors.New("tasks to win must be positive")), ExitConfig,
			"proof-of-sus: invalid configuration: tasks to win must be positive\n"},
		{"runtime", errors.New("open game.db: permission denied"), ExitFailure,
			"proof-of-sus: open game.db: permission denied\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if code := Report(&buf, tc.err); code != tc.code {
				t.Fatalf("expected exit %d, got %d", tc.code, code)
			}
			if buf.String() != tc.out {
				t.Fatalf("expected output %q, got %q", tc.out, buf.String())
			}
		})
	}
}

// TestLoadErrorsExitAsConfig verifies that every Load failure maps to the
// configuration exit status.
func TestLoadErrorsExitAsConfig(t *testing.T) {
	t.Setenv("PROOF_OF_SUS_PLAYERS", "many")
	_, err := Load()
	if got := ExitStatus(err); got != ExitConfig {
		t.Fatalf("parse error: expected exit %d, got %d (%v)", ExitConfig, got, err)
	}

	t.Setenv("PROOF_OF_SUS_PLAYERS", "3")
	_, err = Load()
	if got := ExitStatus(err); got != ExitConfig {
		t.Fatalf("validation error: expected exit %d, got %d (%v)", ExitConfig, got, err)
	}
}
