// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

// Package database provides the SQLite persistence layer.
//
// All access goes through a single *Store. SQLite is opened with a single
// connection and WAL mode, which serializes writers at the driver level and
// keeps the read path simple. Migrations are tracked via PRAGMA user_version.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tomtom215/goalpost/internal/logging"
)

// Store wraps the SQLite database handle.
type Store struct {
	db *sql.DB
}

// Options configures the database connection.
type Options struct {
	// Path is the database file path, or ":memory:".
	Path string
	// BusyTimeout in milliseconds for PRAGMA busy_timeout.
	BusyTimeout int
}

// New opens (creating if necessary) the SQLite database at opts.Path and runs
// pending migrations.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5000
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection avoids SQLITE_BUSY between our own writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logging.Info().Str("path", opts.Path).Msg("Database opened")
	return s, nil
}

// NewMemory opens an in-memory database for tests.
func NewMemory(ctx context.Context) (*Store, error) {
	return New(ctx, Options{Path: ":memory:"})
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Error().Err(rbErr).Msg("Transaction rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
