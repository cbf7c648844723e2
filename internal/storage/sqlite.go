package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSlot keeps the slot as a row of the slots table.
type SQLiteSlot struct {
	db      *sql.DB
	name    string
	version uint
}

func NewSQLiteSlot(dbPath, name string) (*SQLiteSlot, error) {
	if name == "" {
		return nil, errors.New("slot name cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateSlots(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteSlot{db: db, name: name, version: version}, nil
}

// SchemaVersion is the migration version the database was opened at.
func (s *SQLiteSlot) SchemaVersion() uint {
	return s.version
}

func (s *SQLiteSlot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteSlot) Read(ctx context.Context) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE name = ?`, s.name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", s.name, err)
	}
	return value, nil
}

// Write upserts the slot row in a single statement.
func (s *SQLiteSlot) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write slot %s: %w", s.name, err)
	}

	slog.DebugContext(ctx, "Slot written to SQLite", "slot", s.name, "bytes", len(data))
	return nil
}
