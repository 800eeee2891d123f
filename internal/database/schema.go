// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/goalpost/internal/logging"
)

// migrations are applied in order; PRAGMA user_version records the count of
// applied migrations. Never edit an existing entry, only append.
var migrations = []string{
	// 1: initial schema
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		duration_minutes INTEGER,
		type TEXT NOT NULL CHECK (type IN ('daily', 'weekly', 'monthly', 'one-time')),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE TABLE IF NOT EXISTS goal_completions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		goal_id INTEGER NOT NULL,
		completion_date TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (goal_id, completion_date),
		FOREIGN KEY (goal_id) REFERENCES goals(id) ON DELETE CASCADE
	);
	CREATE TABLE IF NOT EXISTS competitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		creator_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (creator_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE TABLE IF NOT EXISTS competition_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		competition_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		duration_minutes INTEGER NOT NULL,
		logged_date TEXT NOT NULL,
		logged_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (competition_id) REFERENCES competitions(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE TABLE IF NOT EXISTS competition_invitations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		competition_id INTEGER NOT NULL,
		inviter_id INTEGER NOT NULL,
		invitee_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'declined')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (competition_id) REFERENCES competitions(id) ON DELETE CASCADE,
		FOREIGN KEY (inviter_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (invitee_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE TABLE IF NOT EXISTS friend_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		requester_id INTEGER NOT NULL,
		addressee_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'declined')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (requester_id, addressee_id),
		FOREIGN KEY (requester_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (addressee_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE TABLE IF NOT EXISTS friendships (
		user_id INTEGER NOT NULL,
		friend_id INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, friend_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (friend_id) REFERENCES users(id) ON DELETE CASCADE
	);`,

	// 2: indexes for the hot aggregation paths
	`CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);
	CREATE INDEX IF NOT EXISTS idx_goal_completions_goal ON goal_completions(goal_id);
	CREATE INDEX IF NOT EXISTS idx_competition_logs_comp_user ON competition_logs(competition_id, user_id);
	CREATE INDEX IF NOT EXISTS idx_invitations_invitee ON competition_invitations(invitee_id, status);`,
}

// migrate applies any migrations beyond the current user_version.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read user_version: %w", err)
	}
	if version >= len(migrations) {
		return nil
	}

	for i := version; i < len(migrations); i++ {
		if _, err := s.db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("failed to set user_version to %d: %w", i+1, err)
		}
		logging.Debug().Int("version", i+1).Msg("Applied migration")
	}
	return nil
}
