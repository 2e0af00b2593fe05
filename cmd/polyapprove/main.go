// Command polyapprove checks the token approvals a Polymarket Safe needs and
// builds the Safe transactions that grant them. It loads configuration,
// validates it, wires dependencies, sets up signal handling, and runs the
// configured mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alanyoungcy/polyapprove/internal/app"
	"github.com/alanyoungcy/polyapprove/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	mode := flag.String("mode", "", "override the configured mode: check, build, watch or server")
	safe := flag.String("safe", "", "override wallet.safe_address")
	flag.Parse()

	// Logs go to stderr; stdout carries command output.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *safe != "" {
		cfg.Wallet.SafeAddress = *safe
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Debug("configuration loaded", slog.Any("config", config.RedactedConfig(cfg)))

	application := app.New(cfg, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		// Cancellation is the normal way watch and server modes end.
		if errors.Is(err, context.Canceled) {
			logger.Info("application shut down gracefully")
			return
		}
		logger.Error("application exited with error", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		application.Close()
		os.Exit(1)
	}
}
