package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyapprove/internal/approvals"
	"github.com/alanyoungcy/polyapprove/internal/domain"
	"github.com/alanyoungcy/polyapprove/internal/server"
	"github.com/alanyoungcy/polyapprove/internal/server/handler"
)

// checkReport is the JSON document printed by check mode.
type checkReport struct {
	Safe string `json:"safe"`
	domain.ApprovalStatus
	Missing      []string                 `json:"missing,omitempty"`
	Transactions []domain.SafeTransaction `json:"transactions,omitempty"`
}

// BuildMode prints the full approval batch. It never touches the chain.
func (a *App) BuildMode(ctx context.Context, deps *Dependencies) error {
	txs := approvals.BuildApprovalTxs(deps.Contracts)
	a.logger.InfoContext(ctx, "approval batch built", slog.Int("transactions", len(txs)))
	return a.writeJSON(txs)
}

// CheckMode checks the configured Safe once, prints the report and notifies
// if any approval is missing.
func (a *App) CheckMode(ctx context.Context, deps *Dependencies) error {
	safe, err := domain.ParseAddress(a.cfg.Wallet.SafeAddress)
	if err != nil {
		return fmt.Errorf("check mode: %w", err)
	}

	report := a.checkOnce(ctx, deps, safe)
	if !report.AllApproved {
		a.notifyMissing(ctx, deps, report)
	}
	return a.writeJSON(report)
}

// WatchMode re-checks the configured Safe every approvals.watch_interval until
// the context is cancelled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	safe, err := domain.ParseAddress(a.cfg.Wallet.SafeAddress)
	if err != nil {
		return fmt.Errorf("watch mode: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startWatcher(ctx, g, deps, safe)
	return g.Wait()
}

// ServerMode serves the approvals API. When a Safe is configured it is also
// watched in the background.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimit:       a.cfg.Server.RateLimit,
		RateLimitWindow: a.cfg.Server.RateLimitWindow.Duration,
	}, server.Handlers{
		Health:    handler.NewHealthHandler(a.cfg.Mode),
		Approvals: handler.NewApprovalHandler(deps.Checker, a.logger),
	}, deps.RateLimiter, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if a.cfg.Wallet.SafeAddress != "" && a.cfg.Approvals.WatchInterval.Duration > 0 {
		safe, err := domain.ParseAddress(a.cfg.Wallet.SafeAddress)
		if err != nil {
			return fmt.Errorf("server mode: %w", err)
		}
		a.startWatcher(ctx, g, deps, safe)
	}

	return g.Wait()
}

// startWatcher adds a goroutine to g that checks safe immediately and then on
// every tick. A notification is sent only when the set of missing approvals
// changes to a non-empty set.
func (a *App) startWatcher(ctx context.Context, g *errgroup.Group, deps *Dependencies, safe common.Address) {
	interval := a.cfg.Approvals.WatchInterval.Duration

	g.Go(func() error {
		a.logger.InfoContext(ctx, "watching approvals",
			slog.String("safe", safe.Hex()),
			slog.Duration("interval", interval),
		)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last []string
		for {
			report := a.checkOnce(ctx, deps, safe)
			if !report.AllApproved && !slices.Equal(last, report.Missing) {
				a.notifyMissing(ctx, deps, report)
			}
			last = report.Missing

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})
}

func (a *App) checkOnce(ctx context.Context, deps *Dependencies, safe common.Address) checkReport {
	status := deps.Checker.CheckAll(ctx, safe)
	report := checkReport{Safe: safe.Hex(), ApprovalStatus: status}

	if status.AllApproved {
		a.logger.InfoContext(ctx, "all approvals in place", slog.String("safe", report.Safe))
		return report
	}

	report.Missing = status.Missing()
	report.Transactions = approvals.PendingApprovalTxs(deps.Contracts, status)
	a.logger.WarnContext(ctx, "approvals missing",
		slog.String("safe", report.Safe),
		slog.Any("missing", report.Missing),
	)
	return report
}

func (a *App) notifyMissing(ctx context.Context, deps *Dependencies, report checkReport) {
	if deps.Notifier == nil {
		return
	}
	if err := deps.Notifier.ApprovalsMissing(ctx, report.Safe, report.Missing); err != nil {
		a.logger.WarnContext(ctx, "approval notification failed", slog.String("error", err.Error()))
	}
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("app: write output: %w", err)
	}
	return nil
}
