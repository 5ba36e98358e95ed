package resultsdb

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/okian/xcheck/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateUp applies all pending migrations. It is a no-op when the schema
// is current.
func (d *DB) MigrateUp() error {
	m, err := d.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: closing it would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: up: %w", ErrMigrate, err)
	}
	return nil
}

// MigrateDown rolls back every migration.
func (d *DB) MigrateDown() error {
	m, err := d.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: down: %w", ErrMigrate, err)
	}
	return nil
}

// Version returns the schema version, 0 when no migration ran.
func (d *DB) Version() (uint, bool, error) {
	m, err := d.newMigrate()
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: version: %w", ErrMigrate, err)
	}
	return v, dirty, nil
}

func (d *DB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("%w: source: %w", ErrMigrate, err)
	}
	driver, err := sqlite.WithInstance(d.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: driver: %w", ErrMigrate, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMigrate, err)
	}
	m.Log = &migrateLogger{l: d.logger}
	return m, nil
}

// migrateLogger adapts the package logger to migrate.Logger.
type migrateLogger struct {
	l logger.Logger
}

func (m *migrateLogger) Printf(format string, v ...any) {
	m.l.Debug(context.Background(), fmt.Sprintf(format, v...))
}

func (m *migrateLogger) Verbose() bool { return false }
