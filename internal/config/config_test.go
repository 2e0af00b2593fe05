package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSafe = "0x1111111111111111111111111111111111111111"

func validConfig() Config {
	cfg := Defaults()
	cfg.Wallet.SafeAddress = testSafe
	return cfg
}

func TestDefaults_Validate(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	minAllowance, err := cfg.MinAllowance()
	require.NoError(t, err)
	assert.Equal(t, "1000000000000", minAllowance.String())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Mode = "trade" },
			wantErr: `unknown mode "trade"`,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: `unknown log_level "verbose"`,
		},
		{
			name:    "check mode without safe",
			mutate:  func(c *Config) { c.Wallet.SafeAddress = "" },
			wantErr: "wallet: safe_address must be set for mode check",
		},
		{
			name:    "malformed safe",
			mutate:  func(c *Config) { c.Wallet.SafeAddress = "0xnope" },
			wantErr: "is not a valid address",
		},
		{
			name:    "zero contract address",
			mutate:  func(c *Config) { c.Contracts.CTF = "0x0000000000000000000000000000000000000000" },
			wantErr: "contracts: ctf",
		},
		{
			name:    "missing rpc url",
			mutate:  func(c *Config) { c.Polygon.RPCURL = "" },
			wantErr: "polygon: rpc_url must not be empty",
		},
		{
			name:    "negative min allowance",
			mutate:  func(c *Config) { c.Approvals.MinAllowance = "-1" },
			wantErr: "approvals: min_allowance",
		},
		{
			name: "watch without interval",
			mutate: func(c *Config) {
				c.Mode = "watch"
				c.Approvals.WatchInterval = duration{}
			},
			wantErr: "approvals: watch_interval must be > 0",
		},
		{
			name: "server with bad port",
			mutate: func(c *Config) {
				c.Mode = "server"
				c.Server.Port = 70000
			},
			wantErr: "server: port must be 1-65535",
		},
		{
			name: "redis enabled without addr",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.Addr = ""
			},
			wantErr: "redis: addr must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_BuildModeNeedsNoChain(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Mode = "build"
	cfg.Polygon.RPCURL = ""
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "server"
log_level = "debug"

[wallet]
safe_address = "0x2222222222222222222222222222222222222222"

[polygon]
rpc_url = "https://rpc.example.org"

[approvals]
min_allowance = "5000000"
watch_interval = "30s"

[server]
port = 9090
cors_origins = ["http://localhost:3000"]
`), 0o600))

	t.Setenv("POLYAPPROVE_SERVER_PORT", "9191")
	t.Setenv("POLYAPPROVE_NOTIFY_EVENTS", "approvals_missing, approvals_ok")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", cfg.Wallet.SafeAddress)
	assert.Equal(t, "https://rpc.example.org", cfg.Polygon.RPCURL)
	assert.Equal(t, int64(137), cfg.Polygon.ChainID, "default retained")
	assert.Equal(t, 30*time.Second, cfg.Approvals.WatchInterval.Duration)
	assert.Equal(t, 9191, cfg.Server.Port, "env overrides file")
	assert.Equal(t, []string{"approvals_missing", "approvals_ok"}, cfg.Notify.Events)

	minAllowance, err := cfg.MinAllowance()
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), minAllowance.Int64())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestRedactedConfig(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Polygon.RPCURL = "https://polygon-mainnet.g.alchemy.com/v2/secret"
	cfg.Server.APIKey = "key"
	cfg.Notify.TelegramToken = "tg"
	cfg.Server.CORSOrigins = []string{"http://a"}

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Polygon.RPCURL)
	assert.Equal(t, "***", out.Server.APIKey)
	assert.Equal(t, "***", out.Notify.TelegramToken)
	assert.Empty(t, out.Notify.DiscordWebhookURL)
	assert.Equal(t, testSafe, out.Wallet.SafeAddress)

	out.Server.CORSOrigins[0] = "http://b"
	assert.Equal(t, "http://a", cfg.Server.CORSOrigins[0])
}
