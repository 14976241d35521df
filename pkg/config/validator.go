package config

import (
	"fmt"
	"net/url"

	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// Validator validates configuration values.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	if err := v.ValidateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := v.ValidateStorage(&cfg.Storage); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := v.ValidateProvider(&cfg.Provider); err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if cfg.Consul.Enabled {
		if err := v.ValidateConsul(&cfg.Consul); err != nil {
			return fmt.Errorf("consul: %w", err)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit: requests_per_second must be positive")
		}
		if cfg.RateLimit.Burst < 1 {
			return fmt.Errorf("rate_limit: burst must be at least 1")
		}
	}
	if cfg.Telemetry.SampleRate < 0 || cfg.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry: sample_rate must be within [0, 1]")
	}
	return nil
}

// ValidateServer validates server configuration.
func (v *Validator) ValidateServer(cfg *ServerConfig) error {
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", cfg.HTTPPort)
	}

	if cfg.GRPCPort > 0 {
		if cfg.GRPCPort > 65535 {
			return fmt.Errorf("invalid grpc_port: %d", cfg.GRPCPort)
		}
		if cfg.GRPCPort == cfg.HTTPPort {
			return fmt.Errorf("grpc_port cannot be the same as http_port")
		}
	} else if cfg.GRPCPort < 0 {
		return fmt.Errorf("invalid grpc_port: %d", cfg.GRPCPort)
	}

	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout cannot be negative")
	}
	if cfg.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout cannot be negative")
	}
	if cfg.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout cannot be negative")
	}
	return nil
}

// ValidateStorage validates the selected store's settings.
func (v *Validator) ValidateStorage(cfg *StorageConfig) error {
	switch cfg.Driver {
	case DriverPostgres:
		if err := v.ValidatePostgres(&cfg.Postgres); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	case DriverSQLite:
		if cfg.SQLite.Path == "" {
			return fmt.Errorf("sqlite: path is required")
		}
	default:
		return fmt.Errorf("unsupported driver %q (want %s or %s)", cfg.Driver, DriverPostgres, DriverSQLite)
	}
	return nil
}

// ValidatePostgres validates PostgreSQL configuration.
func (v *Validator) ValidatePostgres(cfg *PostgresConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.User == "" {
		return fmt.Errorf("user is required")
	}
	if cfg.Database == "" {
		return fmt.Errorf("database is required")
	}
	if cfg.MaxConns < 0 || cfg.MinConns < 0 {
		return fmt.Errorf("connection pool sizes cannot be negative")
	}
	if cfg.MaxConns > 0 && cfg.MinConns > cfg.MaxConns {
		return fmt.Errorf("min_conns cannot exceed max_conns")
	}
	return nil
}

// ValidateProvider validates the movie provider settings. A missing API key
// is allowed here; the provider rejects the calls and the service reports it.
func (v *Validator) ValidateProvider(cfg *ProviderConfig) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be an http(s) URL")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return fmt.Errorf("breaker.max_failures must be at least 1")
	}
	if cfg.Breaker.ResetTimeout <= 0 {
		return fmt.Errorf("breaker.reset_timeout must be positive")
	}
	return nil
}

// ValidateConsul validates Consul configuration.
func (v *Validator) ValidateConsul(cfg *ConsulConfig) error {
	if cfg.Address == "" {
		return fmt.Errorf("address is required")
	}
	if cfg.Scheme != "http" && cfg.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if cfg.KVPrefix == "" {
		return fmt.Errorf("kv_prefix is required")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}
