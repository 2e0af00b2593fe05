// Package app provides the top-level application lifecycle for polyapprove.
// It wires the RPC client, approval checker, rate limiter and notifier, then
// runs the configured mode.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alanyoungcy/polyapprove/internal/config"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	out     io.Writer
	closers []func()
}

// New creates a new App from the given configuration and logger. Command
// output (status and transaction JSON) goes to stdout.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
		out:    os.Stdout,
	}
}

// Run wires all dependencies, runs the configured mode and blocks until it
// completes or the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	mode := strings.ToLower(a.cfg.Mode)
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch mode {
	case "build":
		return a.BuildMode(ctx, deps)
	case "check":
		return a.CheckMode(ctx, deps)
	case "watch":
		return a.WatchMode(ctx, deps)
	case "server":
		return a.ServerMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
