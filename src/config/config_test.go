package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// -----------------------------------------------------------------------------

func TestNewConfig_DefaultsFillMissingKeys(t *testing.T) {
	path := writeConfig(t, `
name: desk
port: 9090
session:
  ws_url: wss://feed.example.com/ws
symbols: [AAPL, MSFT]
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "desk", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "wss://feed.example.com/ws", cfg.Session.URL)
	assert.Equal(t, 1000, cfg.Session.ReconnectBaseMs)
	assert.Equal(t, 5, cfg.Session.ReconnectMaxAttempts)
	assert.Equal(t, 30000, cfg.Session.ReconnectMaxDelayMs)
	assert.Equal(t, 5000, cfg.Notify.TTLMs)
	assert.Equal(t, 7, cfg.Storage.RetentionDays)
	assert.Equal(t, "market_dashboard", cfg.Storage.Schema)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Symbols)
}

func TestNewConfig_ShippedDefaultFileIsValid(t *testing.T) {
	cfg, err := NewConfig(filepath.Join("..", "..", "config", "default.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "market-dashboard", cfg.Name)
	assert.NotEmpty(t, cfg.Symbols)
}

func TestNewConfig_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
session:
  ws_url: ws://localhost:8000/ws
symbols: [AAPL]
`)
	t.Setenv("WS_URL", "ws://override:9000/ws")
	t.Setenv("DASHBOARD_SYMBOLS", "NVDA,TSLA")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://override:9000/ws", cfg.Session.URL)
	assert.Equal(t, []string{"NVDA", "TSLA"}, cfg.Symbols)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestNewConfig_Errors(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = NewConfig(writeConfig(t, "port: [not a number"))
	assert.ErrorContains(t, err, "failed to parse config from YAML")

	_, err = NewConfig(writeConfig(t, "session:\n  ws_url: http://wrong-scheme\n"))
	assert.ErrorContains(t, err, "ws_url must be a ws://")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		err    string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"empty name", func(c *Config) { c.Name = "" }, "application name"},
		{"privileged port", func(c *Config) { c.Port = 80 }, "invalid server port"},
		{"zero base", func(c *Config) { c.Session.ReconnectBaseMs = 0 }, "reconnect_base_ms"},
		{"cap below base", func(c *Config) { c.Session.ReconnectMaxDelayMs = 10 }, "reconnect_max_delay_ms"},
		{"bad storage type", func(c *Config) { c.Storage.Enabled = true; c.Storage.DBType = "mysql" }, "unsupported database type"},
		{"postgres without dsn", func(c *Config) { c.Storage.Enabled = true; c.Storage.DBType = "postgres" }, "connection string"},
		{"telegram without token", func(c *Config) { c.Notify.Telegram.Enabled = true }, "bot_token"},
		{"empty symbol", func(c *Config) { c.Symbols = []string{"AAPL", ""} }, "symbol 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Symbols = []string{"AAPL"}
	cfg.Storage.Enabled = true

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.MConfig, loaded.MConfig)
}
