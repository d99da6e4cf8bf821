package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/okian/swinglab/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrateUp applies all pending migrations. ErrNoChange is not an error.
func migrateUp(db *sql.DB, log logger.Logger) error {
	m, err := newMigrate(db, log)
	if err != nil {
		return err
	}
	// m is not closed: that would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// schemaVersion returns the applied migration version and dirty state.
func schemaVersion(db *sql.DB) (uint, bool, error) {
	m, err := newMigrate(db, logger.Nop())
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func newMigrate(db *sql.DB, log logger.Logger) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{log: log}
	return m, nil
}

// migrateLogger adapts logger.Logger to migrate.Logger.
type migrateLogger struct {
	log logger.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.log.Debug(context.Background(), fmt.Sprintf("[migrate] "+format, v...))
}

func (l *migrateLogger) Verbose() bool {
	return false
}
