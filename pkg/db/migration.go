package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrator handles schema migrations for either supported driver. It owns
// its own connection so closing it never affects the application's pool.
type Migrator struct {
	db      *sql.DB
	migrate *migrate.Migrate
}

// NewMigrator opens a dedicated connection for driver ("postgres" or
// "sqlite") and prepares the migrations found under dir in migrations.
//
// Example:
//
//	//go:embed migrations
//	var migrationsFS embed.FS
//
//	m, err := db.NewMigrator("sqlite", "data/catalog.db", migrationsFS, "migrations/sqlite")
func NewMigrator(driver, dsn string, migrations fs.FS, dir string) (*Migrator, error) {
	sourceDriver, err := iofs.New(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	var (
		conn     *sql.DB
		dbDriver database.Driver
	)
	switch driver {
	case "postgres":
		conn, err = OpenPostgresSQL(dsn)
		if err != nil {
			return nil, err
		}
		dbDriver, err = postgres.WithInstance(conn, &postgres.Config{})
	case "sqlite":
		conn, err = OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		dbDriver, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration driver %q", driver)
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, driver, dbDriver)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{
		db:      conn,
		migrate: m,
	}, nil
}

// Up runs all pending migrations.
func (m *Migrator) Up() error {
	if err := m.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Down rolls back every migration.
func (m *Migrator) Down() error {
	if err := m.migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// Steps runs n migrations. n can be negative to roll back.
func (m *Migrator) Steps(n int) error {
	if err := m.migrate.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration steps failed: %w", err)
	}
	return nil
}

// Version returns the current migration version. A database that has never
// been migrated reports version 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the migration version without running migrations.
// This is useful for fixing a dirty migration state.
func (m *Migrator) Force(version int) error {
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version: %w", err)
	}
	return nil
}

// EnsureSchema applies pending migrations, refusing to touch a dirty database.
func (m *Migrator) EnsureSchema() error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is in dirty state (version %d), fix it with 'migrate force'", version)
	}
	return m.Up()
}

// Close closes the migrator and its connection.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	// sqlite's driver already closed the pool; sql.DB.Close is idempotent.
	connErr := m.db.Close()
	if srcErr != nil {
		return fmt.Errorf("failed to close source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return connErr
}
