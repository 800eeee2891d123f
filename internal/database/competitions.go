// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/goalpost/internal/models"
)

// CreateCompetition inserts a competition and a 0-minute membership row for
// the creator, atomically. The creator is always a member of their own
// competition.
func (s *Store) CreateCompetition(ctx context.Context, creatorID int64, title, description, today string) (*models.Competition, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO competitions (creator_id, title, description) VALUES (?, ?, ?)",
			creatorID, title, description)
		if err != nil {
			return fmt.Errorf("failed to create competition: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read competition id: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO competition_logs (competition_id, user_id, duration_minutes, logged_date) VALUES (?, ?, 0, ?)",
			id, creatorID, today)
		if err != nil {
			return fmt.Errorf("failed to create membership row: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCompetition(ctx, id)
}

// GetCompetition returns a competition with its creator's username, or
// ErrNotFound.
func (s *Store) GetCompetition(ctx context.Context, id int64) (*models.Competition, error) {
	var c models.Competition
	err := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.creator_id, c.title, COALESCE(c.description, ''), c.created_at, u.username
		 FROM competitions c JOIN users u ON u.id = c.creator_id
		 WHERE c.id = ?`, id).
		Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.CreatedAt, &c.CreatorName)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &c, nil
}

// ListCompetitions returns all competitions, newest first.
func (s *Store) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.creator_id, c.title, COALESCE(c.description, ''), c.created_at, u.username
		 FROM competitions c JOIN users u ON u.id = c.creator_id
		 ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	defer rows.Close()

	comps := make([]models.Competition, 0)
	for rows.Next() {
		var c models.Competition
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.CreatedAt, &c.CreatorName); err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// UpdateCompetition updates title and description. Only the creator may
// update; returns ErrNotFound otherwise.
func (s *Store) UpdateCompetition(ctx context.Context, id, creatorID int64, title, description string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE competitions SET title = ?, description = ? WHERE id = ? AND creator_id = ?",
		title, description, id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to update competition: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompetition removes a competition created by creatorID. Logs and
// invitations cascade.
func (s *Store) DeleteCompetition(ctx context.Context, id, creatorID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM competitions WHERE id = ? AND creator_id = ?", id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to delete competition: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindLatestCompetitionByTitle returns the most recently created competition
// whose trimmed, lowercased title equals the given title, or ErrNotFound.
// Used by deletion sync when a goal completion is removed.
func (s *Store) FindLatestCompetitionByTitle(ctx context.Context, title string) (*models.Competition, error) {
	var c models.Competition
	err := s.db.QueryRowContext(ctx,
		`SELECT id, creator_id, title, COALESCE(description, ''), created_at
		 FROM competitions
		 WHERE LOWER(TRIM(title)) = LOWER(TRIM(?))
		 ORDER BY created_at DESC, id DESC LIMIT 1`, title).
		Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &c, nil
}
