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

// InsertLog appends a row to a competition's ledger. Durations may be
// negative (removals) or zero (membership markers); validation happens above
// this layer.
func (s *Store) InsertLog(ctx context.Context, competitionID, userID int64, durationMinutes int, date string) (*models.CompetitionLog, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO competition_logs (competition_id, user_id, duration_minutes, logged_date) VALUES (?, ?, ?, ?)",
		competitionID, userID, durationMinutes, date)
	if err != nil {
		return nil, fmt.Errorf("failed to insert competition log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read log id: %w", err)
	}
	return s.GetLog(ctx, id)
}

// GetLog returns the log row with the given ID, or ErrNotFound.
func (s *Store) GetLog(ctx context.Context, id int64) (*models.CompetitionLog, error) {
	var l models.CompetitionLog
	err := s.db.QueryRowContext(ctx,
		`SELECT id, competition_id, user_id, duration_minutes, logged_date, logged_at
		 FROM competition_logs WHERE id = ?`, id).
		Scan(&l.ID, &l.CompetitionID, &l.UserID, &l.DurationMinutes, &l.LoggedDate, &l.LoggedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &l, nil
}

// DeleteLog removes a log row owned by userID. Returns ErrNotFound when the
// row does not exist or belongs to someone else.
func (s *Store) DeleteLog(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM competition_logs WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete competition log: %w", err)
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

// HasLogRows reports whether the user has any ledger row in the competition,
// including 0-minute membership rows.
func (s *Store) HasLogRows(ctx context.Context, competitionID, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM competition_logs WHERE competition_id = ? AND user_id = ?",
		competitionID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count log rows: %w", err)
	}
	return n > 0, nil
}

// SumLogs returns the signed sum of the user's ledger rows in a competition.
func (s *Store) SumLogs(ctx context.Context, competitionID, userID int64) (int, error) {
	var sum int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(duration_minutes), 0) FROM competition_logs WHERE competition_id = ? AND user_id = ?",
		competitionID, userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum log rows: %w", err)
	}
	return sum, nil
}

// SumMatchingGoalMinutes returns the total of the user's positive goal
// completions on goals whose trimmed, lowercased title equals the given
// competition title. Zero-duration completions never contribute.
func (s *Store) SumMatchingGoalMinutes(ctx context.Context, userID int64, title string) (int, error) {
	var sum int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(gc.duration_minutes), 0)
		 FROM goal_completions gc
		 JOIN goals g ON g.id = gc.goal_id
		 WHERE g.user_id = ?
		 AND LOWER(TRIM(g.title)) = LOWER(TRIM(?))
		 AND gc.duration_minutes > 0`,
		userID, title).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum matching goal minutes: %w", err)
	}
	return sum, nil
}

// LogParticipantIDs returns the distinct users with at least one ledger row
// in the competition.
func (s *Store) LogParticipantIDs(ctx context.Context, competitionID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT user_id FROM competition_logs WHERE competition_id = ?", competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list log participants: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// MatchingGoalUserIDs returns the distinct users with at least one positive
// completion on a goal whose title matches the given competition title.
func (s *Store) MatchingGoalUserIDs(ctx context.Context, title string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT g.user_id
		 FROM goal_completions gc
		 JOIN goals g ON g.id = gc.goal_id
		 WHERE LOWER(TRIM(g.title)) = LOWER(TRIM(?))
		 AND gc.duration_minutes > 0`, title)
	if err != nil {
		return nil, fmt.Errorf("failed to list matching goal users: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ListManualEntries returns the user's positive manual log rows in the
// competition, oldest date first, each carrying its row ID so the owner can
// delete it.
func (s *Store) ListManualEntries(ctx context.Context, competitionID, userID int64) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, logged_date, duration_minutes FROM competition_logs
		 WHERE competition_id = ? AND user_id = ? AND duration_minutes > 0
		 ORDER BY logged_date, id`, competitionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manual entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Minutes); err != nil {
			return nil, fmt.Errorf("failed to scan manual entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListGoalEntries returns the user's positive matching goal completions as
// dated entries, oldest date first.
func (s *Store) ListGoalEntries(ctx context.Context, userID int64, title string) ([]models.GoalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, gc.completion_date, gc.duration_minutes
		 FROM goal_completions gc
		 JOIN goals g ON g.id = gc.goal_id
		 WHERE g.user_id = ?
		 AND LOWER(TRIM(g.title)) = LOWER(TRIM(?))
		 AND gc.duration_minutes > 0
		 ORDER BY gc.completion_date`, userID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to list goal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.GoalEntry, 0)
	for rows.Next() {
		var e models.GoalEntry
		if err := rows.Scan(&e.GoalID, &e.Date, &e.Minutes); err != nil {
			return nil, fmt.Errorf("failed to scan goal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteMostRecentMatchingCompletion deletes at most one goal completion
// owned by userID that mirrors a deleted competition log: same date, same
// duration, goal title matching the competition title. Returns whether a row
// was deleted.
func (s *Store) DeleteMostRecentMatchingCompletion(ctx context.Context, userID int64, title, date string, durationMinutes int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM goal_completions WHERE id IN (
			SELECT gc.id FROM goal_completions gc
			JOIN goals g ON g.id = gc.goal_id
			WHERE g.user_id = ?
			AND LOWER(TRIM(g.title)) = LOWER(TRIM(?))
			AND gc.completion_date = ?
			AND gc.duration_minutes = ?
			ORDER BY gc.completed_at DESC, gc.id DESC LIMIT 1
		)`, userID, title, date, durationMinutes)
	if err != nil {
		return false, fmt.Errorf("failed to sync completion deletion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteMostRecentMatchingLog deletes at most one of the user's log rows in
// the competition that mirrors a deleted goal completion: same date, same
// duration. Returns whether a row was deleted.
func (s *Store) DeleteMostRecentMatchingLog(ctx context.Context, competitionID, userID int64, date string, durationMinutes int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM competition_logs WHERE id IN (
			SELECT id FROM competition_logs
			WHERE competition_id = ? AND user_id = ?
			AND logged_date = ? AND duration_minutes = ?
			ORDER BY logged_at DESC, id DESC LIMIT 1
		)`, competitionID, userID, date, durationMinutes)
	if err != nil {
		return false, fmt.Errorf("failed to sync log deletion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// LeaveCompetition removes all of the user's ledger rows and invitations
// from a competition.
func (s *Store) LeaveCompetition(ctx context.Context, competitionID, userID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM competition_logs WHERE competition_id = ? AND user_id = ?",
			competitionID, userID)
		if err != nil {
			return fmt.Errorf("failed to leave competition: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"DELETE FROM competition_invitations WHERE competition_id = ? AND invitee_id = ?",
			competitionID, userID)
		if err != nil {
			return fmt.Errorf("failed to clear invitations: %w", err)
		}
		return nil
	})
}

func scanIDs(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]int64, error) {
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
