// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/goalpost/internal/models"
)

const goalColumns = "id, user_id, title, COALESCE(description, ''), duration_minutes, type, start_date, end_date, created_at"

func scanGoal(row interface{ Scan(...any) error }) (*models.Goal, error) {
	var g models.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.DurationMinutes,
		&g.Type, &g.StartDate, &g.EndDate, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGoal inserts a new goal and returns it with the assigned ID.
func (s *Store) CreateGoal(ctx context.Context, g *models.Goal) (*models.Goal, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, title, description, duration_minutes, type, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Title, g.Description, g.DurationMinutes, g.Type, g.StartDate, g.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read goal id: %w", err)
	}
	return s.GetGoal(ctx, id)
}

// GetGoal returns the goal with the given ID, or ErrNotFound.
func (s *Store) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE id = ?", id))
	if err != nil {
		return nil, translateNotFound(err)
	}
	return g, nil
}

// ListGoalsByUser returns all goals owned by the user, newest first.
func (s *Store) ListGoalsByUser(ctx context.Context, userID int64) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// UpdateGoal updates a goal's mutable fields. Returns ErrNotFound if the goal
// does not exist or is not owned by userID.
func (s *Store) UpdateGoal(ctx context.Context, g *models.Goal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET title = ?, description = ?, duration_minutes = ?, type = ?,
		 start_date = ?, end_date = ? WHERE id = ? AND user_id = ?`,
		g.Title, g.Description, g.DurationMinutes, g.Type, g.StartDate, g.EndDate, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
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

// DeleteGoal removes a goal owned by userID. Completions cascade.
func (s *Store) DeleteGoal(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM goals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
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
