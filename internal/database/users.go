// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/goalpost/internal/models"
)

// CreateUser inserts a new user and returns it with the assigned ID.
// The password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password) VALUES (?, ?, ?)",
		username, email, passwordHash)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users.email"):
			return nil, ErrEmailTaken
		case isUniqueViolation(err, "users.username"):
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}
	return &models.User{ID: id, Username: username, Email: email}, nil
}

// GetUserByID returns the user with the given ID, or ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password, created_at FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &u, nil
}

// GetUserByLogin looks a user up by username or email, for login.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password, created_at FROM users WHERE username = ? OR email = ?",
		login, login).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &u, nil
}

// GetUserByUsername returns the user with the exact username, or ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password, created_at FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &u, nil
}

// ListUsersByIDs returns the users with the given IDs, without password
// hashes. Unknown IDs are silently skipped.
func (s *Store) ListUsersByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username FROM users WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by id: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, len(ids))
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListUsers returns all users ordered by username, without password hashes.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, username FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
