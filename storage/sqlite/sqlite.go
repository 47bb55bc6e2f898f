// Package sqlite provides a durable profile slot backed by a single-row
// SQLite table. It is suitable for desktop and single-instance deployments
// where the envelope must survive process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mlacademy/authkit/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS profile_slot (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	envelope TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Slot persists the profile envelope in a SQLite database.
type Slot struct {
	db *sql.DB
}

var _ storage.ProfileSlot = (*Slot)(nil)

// Open opens (creating if necessary) a SQLite-backed slot at the given DSN.
// Use ":memory:" for an ephemeral database.
func Open(dsn string) (*Slot, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// The envelope is a single value; one connection avoids SQLITE_BUSY
	// contention without a WAL setup.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create profile_slot table: %w", err)
	}

	return &Slot{db: db}, nil
}

// Read returns the stored envelope, or storage.ErrNotFound if the row is absent.
func (s *Slot) Read(ctx context.Context) (string, error) {
	var envelope string
	err := s.db.QueryRowContext(ctx, `SELECT envelope FROM profile_slot WHERE id = 1`).Scan(&envelope)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read profile slot: %w", err)
	}
	return envelope, nil
}

// Write upserts the stored envelope.
func (s *Slot) Write(ctx context.Context, envelope string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_slot (id, envelope, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET envelope = excluded.envelope, updated_at = excluded.updated_at`,
		envelope, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("write profile slot: %w", err)
	}
	return nil
}

// Clear removes the stored envelope.
func (s *Slot) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profile_slot WHERE id = 1`); err != nil {
		return fmt.Errorf("clear profile slot: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Slot) Close() error {
	return s.db.Close()
}
