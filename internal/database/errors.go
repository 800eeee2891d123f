// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package database

import (
	"database/sql"
	"errors"
	"strings"
)

// Sentinel errors returned by the store. Handlers translate these into the
// API error taxonomy.
var (
	ErrNotFound       = errors.New("record not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// translateNotFound maps sql.ErrNoRows to ErrNotFound so callers only deal
// with store-level sentinels.
func translateNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on the
// given column, e.g. "users.email". modernc.org/sqlite surfaces constraint
// failures in the error text.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
