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

// CreateFriendRequest inserts a pending friend request. A repeated request
// between the same pair returns ErrDuplicateEntry.
func (s *Store) CreateFriendRequest(ctx context.Context, requesterID, addresseeID int64) (*models.FriendRequest, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO friend_requests (requester_id, addressee_id) VALUES (?, ?)",
		requesterID, addresseeID)
	if err != nil {
		if isUniqueViolation(err, "friend_requests") {
			return nil, ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read friend request id: %w", err)
	}
	return &models.FriendRequest{ID: id, RequesterID: requesterID, AddresseeID: addresseeID, Status: models.StatusPending}, nil
}

// GetPendingRequestBetween returns the pending request from requesterID to
// addresseeID, or ErrNotFound.
func (s *Store) GetPendingRequestBetween(ctx context.Context, requesterID, addresseeID int64) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := s.db.QueryRowContext(ctx,
		`SELECT id, requester_id, addressee_id, status, created_at
		 FROM friend_requests
		 WHERE requester_id = ? AND addressee_id = ? AND status = 'pending'`,
		requesterID, addresseeID).
		Scan(&fr.ID, &fr.RequesterID, &fr.AddresseeID, &fr.Status, &fr.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &fr, nil
}

// AcceptFriendRequest marks a pending request accepted and inserts the
// symmetric friendship rows, atomically. Only the addressee may accept;
// returns ErrNotFound when no pending request matches.
func (s *Store) AcceptFriendRequest(ctx context.Context, requestID, addresseeID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var requesterID int64
		err := tx.QueryRowContext(ctx,
			`SELECT requester_id FROM friend_requests
			 WHERE id = ? AND addressee_id = ? AND status = 'pending'`,
			requestID, addresseeID).Scan(&requesterID)
		if err != nil {
			return translateNotFound(err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE friend_requests SET status = 'accepted' WHERE id = ?", requestID); err != nil {
			return fmt.Errorf("failed to accept friend request: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO friendships (user_id, friend_id) VALUES (?, ?), (?, ?)`,
			requesterID, addresseeID, addresseeID, requesterID)
		if err != nil {
			return fmt.Errorf("failed to create friendship: %w", err)
		}
		return nil
	})
}

// DeclineFriendRequest marks a pending request declined. Only the addressee
// may decline.
func (s *Store) DeclineFriendRequest(ctx context.Context, requestID, addresseeID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE friend_requests SET status = 'declined'
		 WHERE id = ? AND addressee_id = ? AND status = 'pending'`,
		requestID, addresseeID)
	if err != nil {
		return fmt.Errorf("failed to decline friend request: %w", err)
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

// ListPendingFriendRequests returns requests awaiting the user's response,
// with requester usernames, newest first.
func (s *Store) ListPendingFriendRequests(ctx context.Context, addresseeID int64) ([]models.FriendRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fr.id, fr.requester_id, fr.addressee_id, fr.status, fr.created_at, u.username
		 FROM friend_requests fr
		 JOIN users u ON u.id = fr.requester_id
		 WHERE fr.addressee_id = ? AND fr.status = 'pending'
		 ORDER BY fr.created_at DESC, fr.id DESC`, addresseeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	reqs := make([]models.FriendRequest, 0)
	for rows.Next() {
		var fr models.FriendRequest
		err := rows.Scan(&fr.ID, &fr.RequesterID, &fr.AddresseeID, &fr.Status, &fr.CreatedAt, &fr.RequesterUsername)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		reqs = append(reqs, fr)
	}
	return reqs, rows.Err()
}

// ListFriends returns the user's friends ordered by username.
func (s *Store) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.username
		 FROM friendships f
		 JOIN users u ON u.id = f.friend_id
		 WHERE f.user_id = ?
		 ORDER BY u.username`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, u)
	}
	return friends, rows.Err()
}

// AreFriends reports whether a friendship row exists from userID to friendID.
func (s *Store) AreFriends(ctx context.Context, userID, friendID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friendships WHERE user_id = ? AND friend_id = ?",
		userID, friendID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return n > 0, nil
}

// RemoveFriend deletes both directions of a friendship.
func (s *Store) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships
		 WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
		userID, friendID, friendID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
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
