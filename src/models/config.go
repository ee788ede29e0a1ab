package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name" env:"DASHBOARD_NAME"`
	Host     string         `yaml:"host" env:"DASHBOARD_HOST"`
	Port     int            `yaml:"port" env:"DASHBOARD_PORT"`
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL"`
	GrpcHost string         `yaml:"grpc_host" env:"GRPC_HOST"`
	GrpcPort int            `yaml:"grpc_port" env:"GRPC_PORT"`
	Session  MSessionConfig `yaml:"session"`
	API      MAPIConfig     `yaml:"api"`
	Storage  MStorageConfig `yaml:"storage"`
	Notify   MNotifyConfig  `yaml:"notifications"`
	Symbols  []string       `yaml:"symbols" env:"DASHBOARD_SYMBOLS" envSeparator:","`
}

type MSessionConfig struct {
	URL                  string `yaml:"ws_url" env:"WS_URL"`
	ReconnectBaseMs      int    `yaml:"reconnect_base_ms"`
	ReconnectMaxAttempts int    `yaml:"reconnect_max_attempts"`
	ReconnectMaxDelayMs  int    `yaml:"reconnect_max_delay_ms"`
}

type MAPIConfig struct {
	BaseURL        string `yaml:"base_url" env:"API_BASE_URL"`
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"max_retries"`
	Proxy          string `yaml:"proxy" env:"API_PROXY"`
}

type MStorageConfig struct {
	Enabled            bool   `yaml:"enabled"`
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string" env:"DB_CONNECTION_STRING"`
	Schema             string `yaml:"schema"`
	QueueSize          int    `yaml:"queue_size"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MNotifyConfig struct {
	TTLMs    int             `yaml:"ttl_ms"`
	Telegram MTelegramConfig `yaml:"telegram"`
}

type MTelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `yaml:"chat_id"`
}
