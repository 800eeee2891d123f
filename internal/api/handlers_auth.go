// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/goalpost/internal/auth"
	"github.com/tomtom215/goalpost/internal/database"
	"github.com/tomtom215/goalpost/internal/logging"
	"github.com/tomtom215/goalpost/internal/metrics"
)

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		metrics.RecordAuthAttempt("register", false)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.Security.BcryptCost)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Password hashing failed")
		respondError(w, http.StatusInternalServerError, "Registration failed")
		metrics.RecordAuthAttempt("register", false)
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		respondStoreError(w, r, err, "User not found.")
		metrics.RecordAuthAttempt("register", false)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("User registered")
	metrics.RecordAuthAttempt("register", true)

	respondJSON(w, http.StatusCreated, envelope{
		"user": envelope{"id": user.ID, "username": user.Username, "email": user.Email},
	})
}

// Login authenticates by username or email and issues a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		metrics.RecordAuthAttempt("login", false)
		return
	}

	user, err := h.store.GetUserByLogin(r.Context(), req.Login)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "Invalid username or password.")
		} else {
			respondStoreError(w, r, err, "User not found.")
		}
		metrics.RecordAuthAttempt("login", false)
		return
	}

	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid username or password.")
		metrics.RecordAuthAttempt("login", false)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Token issuance failed")
		respondError(w, http.StatusInternalServerError, "Login failed")
		metrics.RecordAuthAttempt("login", false)
		return
	}

	metrics.RecordAuthAttempt("login", true)
	respondJSON(w, http.StatusOK, envelope{
		"user":  envelope{"id": user.ID, "username": user.Username, "email": user.Email},
		"token": token,
	})
}

// ListUsers returns all users for member pickers.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "Users not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"users": users})
}
