package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CATALOG_SERVER_HTTP_PORT.
const EnvPrefix = "CATALOG"

// FileLoader loads configuration from a YAML file and environment variables.
type FileLoader struct {
	fs         afero.Fs
	configPath string
	validator  *Validator
}

// NewFileLoader creates a loader reading from the OS filesystem.
func NewFileLoader(configPath string) *FileLoader {
	return NewFileLoaderFs(afero.NewOsFs(), configPath)
}

// NewFileLoaderFs creates a loader reading from fs.
func NewFileLoaderFs(fs afero.Fs, configPath string) *FileLoader {
	return &FileLoader{
		fs:         fs,
		configPath: configPath,
		validator:  NewValidator(),
	}
}

// Load reads, merges and validates the configuration. An explicit config
// path must exist; without one, ./config/config.yaml and ./config.yaml are
// tried and their absence is not an error.
func (l *FileLoader) Load() (*Config, error) {
	v := viper.New()
	v.SetFs(l.fs)

	if l.configPath != "" {
		v.SetConfigFile(l.configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	bindEnv(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// TMDB_API_KEY is what existing deployments already export.
	_ = v.BindEnv("provider.api_key", EnvPrefix+"_PROVIDER_API_KEY", "TMDB_API_KEY")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 0)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("storage.auto_migrate", true)
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "postgres")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.database", "movie_catalog")
	v.SetDefault("storage.postgres.ssl_mode", "disable")
	v.SetDefault("storage.postgres.max_conns", 25)
	v.SetDefault("storage.postgres.min_conns", 5)
	v.SetDefault("storage.postgres.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("storage.sqlite.path", "data/catalog.db")

	v.SetDefault("provider.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("provider.language", "pt-BR")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("provider.breaker.max_failures", 5)
	v.SetDefault("provider.breaker.reset_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.caller", false)
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age_days", 28)
	v.SetDefault("log.file.compress", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "catalog-svc")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.sample_rate", 1.0)

	v.SetDefault("consul.enabled", false)
	v.SetDefault("consul.address", "127.0.0.1:8500")
	v.SetDefault("consul.scheme", "http")
	v.SetDefault("consul.token", "")
	v.SetDefault("consul.datacenter", "")
	v.SetDefault("consul.timeout", 5*time.Second)
	v.SetDefault("consul.kv_prefix", "catalog")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)
}

// ExampleConfig is the annotated configuration written by `config init`.
const ExampleConfig = `# Movie catalog service configuration
# Every key can be overridden with CATALOG_<SECTION>_<KEY>, e.g. CATALOG_SERVER_HTTP_PORT.

server:
  http_port: 8080
  grpc_port: 0          # set to expose grpc.health.v1
  read_timeout: 30s
  write_timeout: 30s
  shutdown_timeout: 10s
  cors_origins: ["*"]

storage:
  driver: postgres      # postgres | sqlite
  auto_migrate: true
  postgres:
    host: localhost
    port: 5432
    user: postgres
    password: your_password
    database: movie_catalog
    ssl_mode: disable
    max_conns: 25
    min_conns: 5
    conn_max_lifetime: 5m
  sqlite:
    path: data/catalog.db

provider:
  base_url: https://api.themoviedb.org/3
  language: pt-BR
  api_key: ""           # or TMDB_API_KEY
  timeout: 10s
  breaker:
    max_failures: 5
    reset_timeout: 30s

log:
  level: info
  caller: false
  file:
    path: ""            # empty: stdout only
    max_size_mb: 100
    max_backups: 3
    max_age_days: 28
    compress: false

telemetry:
  enabled: false
  service_name: catalog-svc
  otlp_endpoint: ""     # e.g. localhost:4317
  sample_rate: 1.0

consul:
  enabled: false
  address: 127.0.0.1:8500
  scheme: http
  kv_prefix: catalog    # reads <kv_prefix>/provider

rate_limit:
  enabled: false
  requests_per_second: 20
  burst: 40
`

// CreateExampleConfig writes ExampleConfig to outputPath on fs.
func CreateExampleConfig(fs afero.Fs, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	exists, err := afero.Exists(fs, outputPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", outputPath, err)
	}
	if exists {
		return fmt.Errorf("%s already exists", outputPath)
	}

	if err := afero.WriteFile(fs, outputPath, []byte(ExampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}
	return nil
}
