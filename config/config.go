package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Remote    RemoteConfig
	Session   SessionConfig
	Compare   CompareConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RemoteConfig holds configuration for the product detail endpoint and product pages
type RemoteConfig struct {
	ProxyBase         string        `mapstructure:"proxy_base"`
	DetailEndpoint    string        `mapstructure:"detail_endpoint"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Repair            string        `mapstructure:"repair"` // "trailing_comma" or "jsonrepair"
}

// SessionConfig holds selection store configuration
type SessionConfig struct {
	Store       string        `mapstructure:"store"` // "memory" or "sqlite"
	SQLitePath  string        `mapstructure:"sqlite_path"`
	TTL         time.Duration `mapstructure:"ttl"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

// CompareConfig holds comparison pipeline configuration
type CompareConfig struct {
	EntryConcurrency int `mapstructure:"entry_concurrency"`
	MaxSelection     int `mapstructure:"max_selection"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP float64 `mapstructure:"per_ip"`
	Burst int     `mapstructure:"burst"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads configuration into v, which may already carry bound flags
func LoadWith(v *viper.Viper) (*Config, error) {
	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/beerlens/")

	// Environment variable settings
	v.SetEnvPrefix("BEERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Remote defaults
	v.SetDefault("remote.proxy_base", "")
	v.SetDefault("remote.detail_endpoint", "https://bier.jp/index.cgi")
	v.SetDefault("remote.timeout", "30s")
	v.SetDefault("remote.requests_per_second", 2.0)
	v.SetDefault("remote.burst", 4)
	v.SetDefault("remote.repair", "trailing_comma")

	// Session defaults
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.sqlite_path", "beerlens.db")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.max_sessions", 10000)

	// Compare defaults
	v.SetDefault("compare.entry_concurrency", 1)
	v.SetDefault("compare.max_selection", 4)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 5.0)
	v.SetDefault("ratelimit.burst", 20)

	// Log defaults
	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Remote.DetailEndpoint == "" {
		return fmt.Errorf("remote detail endpoint is required (set BEERLENS_REMOTE_DETAIL_ENDPOINT)")
	}

	if config.Remote.Repair != "trailing_comma" && config.Remote.Repair != "jsonrepair" {
		return fmt.Errorf("remote repair must be 'trailing_comma' or 'jsonrepair', got: %s", config.Remote.Repair)
	}

	if config.Session.Store != "memory" && config.Session.Store != "sqlite" {
		return fmt.Errorf("session store must be 'memory' or 'sqlite', got: %s", config.Session.Store)
	}

	if config.Session.Store == "sqlite" && config.Session.SQLitePath == "" {
		return fmt.Errorf("SQLite path is required when session store is 'sqlite'")
	}

	if config.Compare.EntryConcurrency < 1 {
		return fmt.Errorf("compare entry concurrency must be at least 1, got: %d", config.Compare.EntryConcurrency)
	}

	if config.Compare.MaxSelection < 2 || config.Compare.MaxSelection > 4 {
		return fmt.Errorf("compare max selection must be between 2 and 4, got: %d", config.Compare.MaxSelection)
	}

	return nil
}
