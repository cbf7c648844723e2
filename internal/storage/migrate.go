package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// slotsSchemaVersion is the newest migration under migrations/.
const slotsSchemaVersion = 1

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema is returned when an earlier migration stopped halfway. The
// database has to be repaired by hand (migrate force) before it is reopened.
var ErrDirtySchema = errors.New("slots schema is dirty")

// migrateSlots brings the slots table at dbPath up to slotsSchemaVersion and
// reports the version found afterwards. It opens its own connection because
// golang-migrate closes the driver it is given.
func migrateSlots(dbPath string) (uint, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open %s for migration: %w", dbPath, err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("sqlite migration driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	var dirty migrate.ErrDirty
	switch {
	case errors.As(err, &dirty):
		return 0, fmt.Errorf("%w at version %d (%s)", ErrDirtySchema, dirty.Version, dbPath)
	case err != nil && !errors.Is(err, migrate.ErrNoChange):
		return 0, fmt.Errorf("apply slot migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if version != slotsSchemaVersion {
		return version, fmt.Errorf("slots schema at version %d, want %d", version, slotsSchemaVersion)
	}

	slog.Debug("Slots schema ready", "path", dbPath, "version", version)
	return version, nil
}
