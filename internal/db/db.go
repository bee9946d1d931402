package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrStorageUnavailable is returned when the backing database cannot be
// opened. Callers must treat the store as unusable until Open succeeds.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Open opens (creating if absent) the marker database at dbPath and applies
// any pending schema migrations. It is safe to call on every launch; applied
// migrations are skipped and existing data is preserved.
func Open(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on", dbPath)
	return open(dsn)
}

// OpenForTesting opens an in-memory database with the full schema applied.
func OpenForTesting() (*sql.DB, error) {
	return open("file::memory:?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on")
}

func open(dsn string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStorageUnavailable, err)
	}

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", ErrStorageUnavailable, err)
	}

	if err := runMigrations(database); err != nil {
		if cerr := database.Close(); cerr != nil {
			return nil, fmt.Errorf("%w: failed to run migrations: %v (also failed to close db: %v)", ErrStorageUnavailable, err, cerr)
		}
		return nil, fmt.Errorf("%w: failed to run migrations: %v", ErrStorageUnavailable, err)
	}

	return database, nil
}

func runMigrations(database *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(database, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "nearmark", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
