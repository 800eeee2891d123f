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

// UpsertCompletion records a completion for a goal on a date. A second
// completion on the same date replaces the stored duration rather than
// accumulating.
func (s *Store) UpsertCompletion(ctx context.Context, goalID int64, date string, durationMinutes int) (*models.GoalCompletion, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goal_completions (goal_id, completion_date, duration_minutes)
		 VALUES (?, ?, ?)
		 ON CONFLICT (goal_id, completion_date)
		 DO UPDATE SET duration_minutes = excluded.duration_minutes, completed_at = CURRENT_TIMESTAMP`,
		goalID, date, durationMinutes)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert completion: %w", err)
	}
	return s.GetCompletion(ctx, goalID, date)
}

// GetCompletion returns the completion for a goal on a date, or ErrNotFound.
func (s *Store) GetCompletion(ctx context.Context, goalID int64, date string) (*models.GoalCompletion, error) {
	var c models.GoalCompletion
	err := s.db.QueryRowContext(ctx,
		`SELECT id, goal_id, completion_date, duration_minutes, completed_at
		 FROM goal_completions WHERE goal_id = ? AND completion_date = ?`, goalID, date).
		Scan(&c.ID, &c.GoalID, &c.CompletionDate, &c.DurationMinutes, &c.CompletedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &c, nil
}

// ListCompletionsByGoal returns all completions for a goal, newest date first.
func (s *Store) ListCompletionsByGoal(ctx context.Context, goalID int64) ([]models.GoalCompletion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, goal_id, completion_date, duration_minutes, completed_at
		 FROM goal_completions WHERE goal_id = ? ORDER BY completion_date DESC`, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	comps := make([]models.GoalCompletion, 0)
	for rows.Next() {
		var c models.GoalCompletion
		if err := rows.Scan(&c.ID, &c.GoalID, &c.CompletionDate, &c.DurationMinutes, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// DeleteCompletion removes the completion for a goal on a date, checking goal
// ownership. Returns ErrNotFound when no such completion exists.
func (s *Store) DeleteCompletion(ctx context.Context, goalID, userID int64, date string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM goal_completions
		 WHERE goal_id = ? AND completion_date = ?
		 AND goal_id IN (SELECT id FROM goals WHERE user_id = ?)`,
		goalID, date, userID)
	if err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
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

// CompletionStats returns the completion count and total positive minutes for
// a goal within the inclusive date window.
func (s *Store) CompletionStats(ctx context.Context, goalID int64, startDate, endDate string) (count, minutes int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration_minutes), 0)
		 FROM goal_completions
		 WHERE goal_id = ? AND completion_date BETWEEN ? AND ?`,
		goalID, startDate, endDate).Scan(&count, &minutes)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute completion stats: %w", err)
	}
	return count, minutes, nil
}

// UserCompletionTotals returns the user's all-time completion count and
// total minutes across every goal.
func (s *Store) UserCompletionTotals(ctx context.Context, userID int64) (count, minutes int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(gc.id), COALESCE(SUM(gc.duration_minutes), 0)
		 FROM goal_completions gc
		 JOIN goals g ON g.id = gc.goal_id
		 WHERE g.user_id = ?`, userID).Scan(&count, &minutes)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute user totals: %w", err)
	}
	return count, minutes, nil
}

// UserMinutesSince returns the user's completion minutes on or after the
// given date.
func (s *Store) UserMinutesSince(ctx context.Context, userID int64, fromDate string) (int, error) {
	var minutes int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(gc.duration_minutes), 0)
		 FROM goal_completions gc
		 JOIN goals g ON g.id = gc.goal_id
		 WHERE g.user_id = ? AND gc.completion_date >= ?`, userID, fromDate).Scan(&minutes)
	if err != nil {
		return 0, fmt.Errorf("failed to compute recent minutes: %w", err)
	}
	return minutes, nil
}

// GoalLeaderboard aggregates completion counts and minutes per user across
// all goals, most minutes first. An empty startDate or endDate leaves that
// side of the window open; limit 0 means unlimited. Users with no completions
// in the window still appear with zero totals.
func (s *Store) GoalLeaderboard(ctx context.Context, startDate, endDate string, limit int) ([]models.LeaderboardRow, error) {
	query := `SELECT u.id, u.username, COUNT(gc.id), COALESCE(SUM(gc.duration_minutes), 0)
		 FROM users u
		 LEFT JOIN goals g ON g.user_id = u.id
		 LEFT JOIN goal_completions gc ON gc.goal_id = g.id`
	args := make([]any, 0, 3)
	if startDate != "" {
		query += " AND gc.completion_date >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND gc.completion_date <= ?"
		args = append(args, endDate)
	}
	query += ` GROUP BY u.id, u.username
		 ORDER BY COALESCE(SUM(gc.duration_minutes), 0) DESC, COUNT(gc.id) DESC, u.username`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardRow, 0)
	for rows.Next() {
		var e models.LeaderboardRow
		if err := rows.Scan(&e.ID, &e.Username, &e.GoalsCompleted, &e.TotalMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
