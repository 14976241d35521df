// Package config provides configuration management for the catalog service.
//
// Settings come from an optional YAML file, CATALOG_* environment variables
// and, when enabled, a Consul KV overlay for the movie provider section.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Consul    ConsulConfig    `mapstructure:"consul"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds server settings.
type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"` // 0 disables the gRPC health server
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects and configures the favorites store.
type StorageConfig struct {
	Driver      string         `mapstructure:"driver"`
	AutoMigrate bool           `mapstructure:"auto_migrate"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	SQLite      SQLiteConfig   `mapstructure:"sqlite"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the connection string in URL form, accepted by both pgx and lib/pq.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// SQLiteConfig holds the embedded store settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// ProviderConfig configures the movie metadata provider client.
type ProviderConfig struct {
	BaseURL  string        `mapstructure:"base_url" json:"base_url"`
	Language string        `mapstructure:"language" json:"language"`
	APIKey   string        `mapstructure:"api_key" json:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout" json:"-"`
	Breaker  BreakerConfig `mapstructure:"breaker" json:"-"`
}

// BreakerConfig configures the provider circuit breaker.
type BreakerConfig struct {
	MaxFailures  int           `mapstructure:"max_failures"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Caller bool          `mapstructure:"caller"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig configures the optional rotating log file.
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// TelemetryConfig configures tracing and metrics.
type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	ServiceName  string  `mapstructure:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"` // empty: metrics only
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// ConsulConfig holds Consul connection settings for the KV overlay.
type ConsulConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Address    string        `mapstructure:"address"`
	Scheme     string        `mapstructure:"scheme"`
	Token      string        `mapstructure:"token"`
	Datacenter string        `mapstructure:"datacenter"`
	Timeout    time.Duration `mapstructure:"timeout"`
	KVPrefix   string        `mapstructure:"kv_prefix"`
}

// RateLimitConfig configures the inbound per-client limiter.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}
