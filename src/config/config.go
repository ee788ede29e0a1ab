package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// DefaultConfig returns the settings used for every key the YAML file omits.
func DefaultConfig() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "market-dashboard",
		Host:     "0.0.0.0",
		Port:     8080,
		LogLevel: "INFO",
		GrpcHost: "0.0.0.0",
		GrpcPort: 50051,
		Session: models.MSessionConfig{
			URL:                  "ws://localhost:8000/ws",
			ReconnectBaseMs:      1000,
			ReconnectMaxAttempts: 5,
			ReconnectMaxDelayMs:  30000,
		},
		API: models.MAPIConfig{
			BaseURL:        "http://localhost:8000",
			RequestTimeout: 10,
			MaxRetries:     2,
		},
		Storage: models.MStorageConfig{
			Enabled:       false,
			DBType:        "sqlite",
			DBPath:        "data/dashboard.db",
			Schema:        "market_dashboard",
			QueueSize:     1024,
			RetentionDays: 7,
		},
		Notify: models.MNotifyConfig{
			TTLMs: 5000,
		},
	}}
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file on top of the defaults, then applies
// environment overrides.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the defaulted struct
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config.MConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	// 3. Environment wins over the file
	if err := env.Parse(config.MConfig); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Gateway
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Session
	u, err := url.Parse(c.Session.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("session ws_url must be a ws:// or wss:// URL, got %q", c.Session.URL)
	}
	if c.Session.ReconnectBaseMs <= 0 {
		return fmt.Errorf("reconnect_base_ms must be greater than 0")
	}
	if c.Session.ReconnectMaxAttempts < 0 {
		return fmt.Errorf("reconnect_max_attempts cannot be negative")
	}
	if c.Session.ReconnectMaxDelayMs < c.Session.ReconnectBaseMs {
		return fmt.Errorf("reconnect_max_delay_ms must not be below reconnect_base_ms")
	}

	// Request boundary
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("invalid api base_url %q: %w", c.API.BaseURL, err)
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.API.Proxy != "" && !helpers.ValidateProxy(c.API.Proxy) {
		return fmt.Errorf("invalid api proxy %q", c.API.Proxy)
	}

	// Storage
	if c.Storage.Enabled {
		switch c.Storage.DBType {
		case "sqlite":
			if c.Storage.DBPath == "" {
				return fmt.Errorf("database path cannot be empty for sqlite")
			}
		case "postgres":
			if c.Storage.DBConnectionString == "" {
				return fmt.Errorf("database connection string cannot be empty for postgres")
			}
		default:
			return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
		}
		if c.Storage.QueueSize <= 0 {
			return fmt.Errorf("storage queue_size must be greater than 0")
		}
		if c.Storage.RetentionDays < 0 {
			return fmt.Errorf("storage retention_days cannot be negative")
		}
	}

	// Notifications
	if c.Notify.TTLMs <= 0 {
		return fmt.Errorf("notification ttl_ms must be greater than 0")
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Notify.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	for i, symbol := range c.Symbols {
		if symbol == "" {
			return fmt.Errorf("symbol %d cannot be empty", i)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
