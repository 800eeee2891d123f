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

// CreateInvitation invites a user to a competition. Duplicate-pending checks
// happen at the handler layer via HasPendingInvitation.
func (s *Store) CreateInvitation(ctx context.Context, competitionID, inviterID, inviteeID int64) (*models.CompetitionInvitation, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO competition_invitations (competition_id, inviter_id, invitee_id) VALUES (?, ?, ?)",
		competitionID, inviterID, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read invitation id: %w", err)
	}
	return s.GetInvitation(ctx, id)
}

// GetInvitation returns the invitation with the given ID, or ErrNotFound.
func (s *Store) GetInvitation(ctx context.Context, id int64) (*models.CompetitionInvitation, error) {
	var inv models.CompetitionInvitation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, competition_id, inviter_id, invitee_id, status, created_at
		 FROM competition_invitations WHERE id = ?`, id).
		Scan(&inv.ID, &inv.CompetitionID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &inv, nil
}

// HasPendingInvitation reports whether the invitee already has a pending
// invitation to the competition.
func (s *Store) HasPendingInvitation(ctx context.Context, competitionID, inviteeID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM competition_invitations
		 WHERE competition_id = ? AND invitee_id = ? AND status = 'pending'`,
		competitionID, inviteeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	return n > 0, nil
}

// ListPendingInvitations returns the user's pending invitations with
// competition and inviter details, newest first.
func (s *Store) ListPendingInvitations(ctx context.Context, inviteeID int64) ([]models.CompetitionInvitation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.competition_id, i.inviter_id, i.invitee_id, i.status, i.created_at,
		        c.title, COALESCE(c.description, ''), u.username
		 FROM competition_invitations i
		 JOIN competitions c ON c.id = i.competition_id
		 JOIN users u ON u.id = i.inviter_id
		 WHERE i.invitee_id = ? AND i.status = 'pending'
		 ORDER BY i.created_at DESC, i.id DESC`, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invs := make([]models.CompetitionInvitation, 0)
	for rows.Next() {
		var inv models.CompetitionInvitation
		err := rows.Scan(&inv.ID, &inv.CompetitionID, &inv.InviterID, &inv.InviteeID,
			&inv.Status, &inv.CreatedAt,
			&inv.CompetitionTitle, &inv.CompetitionDescription, &inv.InviterUsername)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// RespondToInvitation sets the status of a pending invitation. Only the
// invitee may respond; returns ErrNotFound when no pending invitation
// matches.
func (s *Store) RespondToInvitation(ctx context.Context, id, inviteeID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE competition_invitations SET status = ?
		 WHERE id = ? AND invitee_id = ? AND status = 'pending'`,
		status, id, inviteeID)
	if err != nil {
		return fmt.Errorf("failed to respond to invitation: %w", err)
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
