package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYAPPROVE_* environment variable overrides, and
// returns the final Config. An empty path skips the file and uses defaults plus
// environment. The returned Config has NOT been validated; the caller should
// invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYAPPROVE_* environment variables and
// overwrites the corresponding Config fields when a variable is set.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.SafeAddress, "POLYAPPROVE_WALLET_SAFE_ADDRESS")

	// ── Polygon ──
	setStr(&cfg.Polygon.RPCURL, "POLYAPPROVE_POLYGON_RPC_URL")
	setInt64(&cfg.Polygon.ChainID, "POLYAPPROVE_POLYGON_CHAIN_ID")

	// ── Contracts ──
	setStr(&cfg.Contracts.USDC, "POLYAPPROVE_CONTRACTS_USDC")
	setStr(&cfg.Contracts.CTF, "POLYAPPROVE_CONTRACTS_CTF")
	setStr(&cfg.Contracts.CTFExchange, "POLYAPPROVE_CONTRACTS_CTF_EXCHANGE")
	setStr(&cfg.Contracts.NegRiskCTFExchange, "POLYAPPROVE_CONTRACTS_NEG_RISK_CTF_EXCHANGE")
	setStr(&cfg.Contracts.NegRiskAdapter, "POLYAPPROVE_CONTRACTS_NEG_RISK_ADAPTER")

	// ── Approvals ──
	setStr(&cfg.Approvals.MinAllowance, "POLYAPPROVE_APPROVALS_MIN_ALLOWANCE")
	setDuration(&cfg.Approvals.WatchInterval, "POLYAPPROVE_APPROVALS_WATCH_INTERVAL")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "POLYAPPROVE_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYAPPROVE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYAPPROVE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYAPPROVE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYAPPROVE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYAPPROVE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYAPPROVE_REDIS_TLS_ENABLED")

	// ── Server ──
	setInt(&cfg.Server.Port, "POLYAPPROVE_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "POLYAPPROVE_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYAPPROVE_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimit, "POLYAPPROVE_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateLimitWindow, "POLYAPPROVE_SERVER_RATE_LIMIT_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "POLYAPPROVE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYAPPROVE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYAPPROVE_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POLYAPPROVE_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "POLYAPPROVE_MODE")
	setStr(&cfg.LogLevel, "POLYAPPROVE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
