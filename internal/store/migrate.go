package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // database/sql driver used by the migration runner
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationResult reports the schema version after a migration run.
type MigrationResult struct {
	Version uint
	Dirty   bool
	Changed bool
}

// Migrate applies every pending up migration.
func Migrate(dsn string) (MigrationResult, error) {
	return runMigrations(dsn, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back steps migrations.
func MigrateDown(dsn string, steps int) (MigrationResult, error) {
	if steps < 1 {
		return MigrationResult{}, fmt.Errorf("steps must be positive, got %d", steps)
	}
	return runMigrations(dsn, func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

func runMigrations(dsn string, run func(*migrate.Migrate) error) (MigrationResult, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return MigrationResult{}, wrap("migrate", err)
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		return MigrationResult{}, wrap("migrate", err)
	}

	result := MigrationResult{Changed: true}
	if err := run(m); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return MigrationResult{}, wrap("migrate", err)
		}
		result.Changed = false
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, wrap("migrate", err)
	}
	result.Version = version
	result.Dirty = dirty
	return result, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}
