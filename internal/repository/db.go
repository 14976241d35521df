// Package repository persists favorite movies in PostgreSQL or SQLite.
package repository

import (
	"context"
	"embed"
	"fmt"

	"github.com/Kr4uzr/movie-catalog/pkg/config"
	"github.com/Kr4uzr/movie-catalog/pkg/db"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// NewMigrator returns a migrator for the configured driver's schema.
func NewMigrator(cfg config.StorageConfig) (*db.Migrator, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return db.NewMigrator("postgres", cfg.Postgres.DSN(), migrationsFS, "migrations/postgres")
	case config.DriverSQLite:
		return db.NewMigrator("sqlite", cfg.SQLite.Path, migrationsFS, "migrations/sqlite")
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// Migrate brings the configured database up to the latest schema.
func Migrate(cfg config.StorageConfig) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.EnsureSchema()
}

// Open connects to the configured store, migrating it first when
// auto_migrate is set. The returned func releases the connection.
func Open(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (FavoriteRepository, func(), error) {
	if cfg.AutoMigrate {
		if err := Migrate(cfg); err != nil {
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("Database schema is up to date", logger.String("driver", cfg.Driver))
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPostgresPool(ctx, db.PoolConfig{
			DSN:             cfg.Postgres.DSN(),
			MaxConns:        cfg.Postgres.MaxConns,
			MinConns:        cfg.Postgres.MinConns,
			MaxConnLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("Connected to PostgreSQL",
			logger.String("host", cfg.Postgres.Host),
			logger.String("database", cfg.Postgres.Database),
		)
		return NewPostgresRepository(pool), pool.Close, nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Opened SQLite database", logger.String("path", cfg.SQLite.Path))
		return NewSQLiteRepository(conn), func() { conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
