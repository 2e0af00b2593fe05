// Package config defines the top-level configuration for polyapprove and
// provides validation helpers.
package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polyapprove/internal/platform/polygon"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POLYAPPROVE_* environment variables.
type Config struct {
	Wallet    WalletConfig    `toml:"wallet"`
	Polygon   PolygonConfig   `toml:"polygon"`
	Contracts ContractsConfig `toml:"contracts"`
	Approvals ApprovalsConfig `toml:"approvals"`
	Redis     RedisConfig     `toml:"redis"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// WalletConfig identifies the Safe whose approvals are checked.
type WalletConfig struct {
	SafeAddress string `toml:"safe_address"`
}

// PolygonConfig holds the RPC endpoint and expected chain.
type PolygonConfig struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID int64  `toml:"chain_id"`
}

// ContractsConfig holds the token and exchange contract addresses.
type ContractsConfig struct {
	USDC               string `toml:"usdc"`
	CTF                string `toml:"ctf"`
	CTFExchange        string `toml:"ctf_exchange"`
	NegRiskCTFExchange string `toml:"neg_risk_ctf_exchange"`
	NegRiskAdapter     string `toml:"neg_risk_adapter"`
}

// ApprovalsConfig tunes the approval checker.
type ApprovalsConfig struct {
	// MinAllowance is the USDC allowance in base units that counts as
	// approved. Decimal string so values above 2^63 can be expressed.
	MinAllowance  string   `toml:"min_allowance"`
	WatchInterval duration `toml:"watch_interval"`
}

// RedisConfig holds Redis connection parameters. Redis backs the API rate
// limiter and is optional.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port            int      `toml:"port"`
	APIKey          string   `toml:"api_key"`
	CORSOrigins     []string `toml:"cors_origins"`
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the Polygon mainnet deployment and
// reasonable service defaults.
func Defaults() Config {
	return Config{
		Polygon: PolygonConfig{
			RPCURL:  polygon.DefaultRPCURL,
			ChainID: polygon.PolygonChainID,
		},
		Contracts: ContractsConfig{
			USDC:               polygon.USDCeAddress,
			CTF:                polygon.ConditionalTokensAddress,
			CTFExchange:        polygon.CTFExchangeAddress,
			NegRiskCTFExchange: polygon.NegRiskCTFExchangeAddress,
			NegRiskAdapter:     polygon.NegRiskAdapterAddress,
		},
		Approvals: ApprovalsConfig{
			MinAllowance:  "1000000000000",
			WatchInterval: duration{10 * time.Minute},
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Port:            8000,
			RateLimit:       30,
			RateLimitWindow: duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"approvals_missing"},
		},
		Mode:     "check",
		LogLevel: "info",
	}
}

// MinAllowance parses Approvals.MinAllowance.
func (c *Config) MinAllowance() (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(c.Approvals.MinAllowance), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("config: invalid approvals.min_allowance %q", c.Approvals.MinAllowance)
	}
	return v, nil
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"check":  true,
	"build":  true,
	"watch":  true,
	"server": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: check, build, watch, server)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Wallet — check and watch run against a single configured Safe.
	if mode == "check" || mode == "watch" {
		if c.Wallet.SafeAddress == "" {
			errs = append(errs, "wallet: safe_address must be set for mode "+c.Mode)
		} else if !isAddress(c.Wallet.SafeAddress) {
			errs = append(errs, fmt.Sprintf("wallet: safe_address %q is not a valid address", c.Wallet.SafeAddress))
		}
	}

	// Polygon — build mode never touches the chain.
	if mode != "build" {
		if c.Polygon.RPCURL == "" {
			errs = append(errs, "polygon: rpc_url must not be empty")
		}
		if c.Polygon.ChainID <= 0 {
			errs = append(errs, "polygon: chain_id must be positive")
		}
	}

	// Contracts
	for _, ct := range []struct{ name, addr string }{
		{"usdc", c.Contracts.USDC},
		{"ctf", c.Contracts.CTF},
		{"ctf_exchange", c.Contracts.CTFExchange},
		{"neg_risk_ctf_exchange", c.Contracts.NegRiskCTFExchange},
		{"neg_risk_adapter", c.Contracts.NegRiskAdapter},
	} {
		if !isAddress(ct.addr) {
			errs = append(errs, fmt.Sprintf("contracts: %s %q is not a valid non-zero address", ct.name, ct.addr))
		}
	}

	// Approvals
	if _, err := c.MinAllowance(); err != nil {
		errs = append(errs, "approvals: min_allowance must be a non-negative integer")
	}
	if mode == "watch" && c.Approvals.WatchInterval.Duration <= 0 {
		errs = append(errs, "approvals: watch_interval must be > 0 in watch mode")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if mode == "server" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Redis.Enabled && c.Server.RateLimit > 0 && c.Server.RateLimitWindow.Duration <= 0 {
			errs = append(errs, "server: rate_limit_window must be > 0 when rate_limit is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func isAddress(s string) bool {
	s = strings.TrimSpace(s)
	return common.IsHexAddress(s) && common.HexToAddress(s) != (common.Address{})
}
