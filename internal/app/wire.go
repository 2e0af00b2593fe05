package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polyapprove/internal/approvals"
	"github.com/alanyoungcy/polyapprove/internal/cache/redis"
	"github.com/alanyoungcy/polyapprove/internal/config"
	"github.com/alanyoungcy/polyapprove/internal/domain"
	"github.com/alanyoungcy/polyapprove/internal/notify"
	"github.com/alanyoungcy/polyapprove/internal/platform/polygon"
)

// Dependencies bundles everything the modes need. Checker is nil in build
// mode, RateLimiter is nil unless Redis is enabled.
type Dependencies struct {
	Contracts   approvals.Contracts
	Checker     *approvals.Checker
	RateLimiter domain.RateLimiter
	Notifier    *notify.Notifier
}

// needsChain returns true for modes that read on-chain state.
func needsChain(mode string) bool {
	return mode != "build"
}

// Wire constructs all concrete dependencies from the given configuration and
// returns them together with a cleanup function that releases them.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	contracts, err := ContractsFromConfig(cfg.Contracts)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: %w", err)
	}
	deps := &Dependencies{Contracts: contracts}

	mode := strings.ToLower(cfg.Mode)

	// --- Polygon RPC ---
	if needsChain(mode) {
		minAllowance, err := cfg.MinAllowance()
		if err != nil {
			return nil, nil, fmt.Errorf("wire: %w", err)
		}

		chain, err := polygon.Dial(ctx, polygon.ClientConfig{
			RPCURL:  cfg.Polygon.RPCURL,
			ChainID: cfg.Polygon.ChainID,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: polygon: %w", err)
		}
		closers = append(closers, chain.Close)

		deps.Checker = approvals.NewChecker(chain, contracts,
			approvals.WithMinAllowance(minAllowance),
			approvals.WithLogger(logger),
		)
	}

	// --- Redis (API rate limiting) ---
	if mode == "server" && cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// ContractsFromConfig parses the configured contract addresses.
func ContractsFromConfig(cc config.ContractsConfig) (approvals.Contracts, error) {
	var (
		c    approvals.Contracts
		errs []string
	)
	for _, f := range []struct {
		name string
		raw  string
		dst  *common.Address
	}{
		{"usdc", cc.USDC, &c.USDC},
		{"ctf", cc.CTF, &c.CTF},
		{"ctf_exchange", cc.CTFExchange, &c.CTFExchange},
		{"neg_risk_ctf_exchange", cc.NegRiskCTFExchange, &c.NegRiskCTFExchange},
		{"neg_risk_adapter", cc.NegRiskAdapter, &c.NegRiskAdapter},
	} {
		addr, err := domain.ParseAddress(f.raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.name, err))
			continue
		}
		*f.dst = addr
	}
	if len(errs) > 0 {
		return approvals.Contracts{}, fmt.Errorf("contracts: %s", strings.Join(errs, "; "))
	}
	return c, nil
}
