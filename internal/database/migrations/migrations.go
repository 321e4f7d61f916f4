// Package migrations holds the index schema and applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// ErrNoSchema is returned by CheckDBMigrationStatus for a database that was never migrated.
var ErrNoSchema = errors.New("database has no schema version (needs migration)")

// Status describes where a database stands relative to the embedded migrations.
type Status struct {
	Current uint
	Latest  uint
	Dirty   bool
}

// ReadStatus reports the schema version of db. Current is 0 for a fresh database.
// The migrate instance is not closed since that would close db, which the caller owns.
func ReadStatus(db *sql.DB) (Status, error) {
	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}

	latest, err := LatestVersion()
	if err != nil {
		return Status{}, err
	}

	current, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{Latest: latest}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("reading schema version: %w", err)
	}
	return Status{Current: current, Latest: latest, Dirty: dirty}, nil
}

// CheckDBMigrationStatus returns nil if db is at the latest schema version.
func CheckDBMigrationStatus(db *sql.DB) error {
	st, err := ReadStatus(db)
	if err != nil {
		return err
	}

	switch {
	case st.Current == 0 && !st.Dirty:
		return ErrNoSchema
	case st.Dirty:
		return fmt.Errorf("database is dirty at version %d (an earlier migration failed)", st.Current)
	case st.Current < st.Latest:
		return fmt.Errorf("database is at version %d but latest is %d", st.Current, st.Latest)
	case st.Current > st.Latest:
		return fmt.Errorf("database version %d is newer than this binary (%d)", st.Current, st.Latest)
	}
	return nil
}

// MigrateUp applies all pending migrations. An up-to-date database is not an error.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// LatestVersion returns the highest migration version embedded in the binary.
func LatestVersion() (uint, error) {
	src, err := openSource()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("reading first migration: %w", err)
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading migration after %d: %w", version, err)
		}
		version = next
	}
}

func openSource() (source.Driver, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}
	return src, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := openSource()
	if err != nil {
		return nil, err
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}
	return m, nil
}
