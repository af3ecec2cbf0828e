package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/dev-tnsq/Proof-of-Sus/config"
	"github.com/dev-tnsq/Proof-of-Sus/telemetry"
)

const serviceName = "proof-of-sus"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(config.Report(os.Stderr, err))
	}

	pterm.DefaultLogger.Level = ptermLevel(cfg.LogLevel)
	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("P", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("roof of ", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("S", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("us", pterm.FgDarkGray.ToStyle()),
	).Render()

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.Tracing)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}

	err = run(ctx, os.Args[1:], cfg, logger)
	if serr := shutdown(ctx); serr != nil {
		logger.Warn("trace shutdown failed", "error", serr)
	}
	if code := config.Report(os.Stderr, err); code != config.ExitOK {
		os.Exit(code)
	}
}

func run(ctx context.Context, args []string, cfg config.Config, logger *slog.Logger) error {
	if len(args) != 1 {
		return config.ErrUsage
	}
	switch args[0] {
	case "demo":
		_, err := runDemo(ctx, cfg, logger)
		return err
	case "state":
		return runState(ctx, cfg, logger)
	default:
		return fmt.Errorf("%w (unknown command %q)", config.ErrUsage, args[0])
	}
}

func ptermLevel(l slog.Level) pterm.LogLevel {
	switch {
	case l <= slog.LevelDebug:
		return pterm.LogLevelDebug
	case l <= slog.LevelInfo:
		return pterm.LogLevelInfo
	case l <= slog.LevelWarn:
		return pterm.LogLevelWarn
	default:
		return pterm.LogLevelError
	}
}
