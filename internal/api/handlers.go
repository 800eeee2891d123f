// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

// Package api provides the HTTP handlers and Chi routing for the service.
package api

import (
	"net/http"

	"github.com/tomtom215/goalpost/internal/auth"
	"github.com/tomtom215/goalpost/internal/competition"
	"github.com/tomtom215/goalpost/internal/config"
	"github.com/tomtom215/goalpost/internal/database"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	store  *database.Store
	comps  *competition.Service
	syncer *competition.Syncer
	tokens *auth.TokenIssuer
	cfg    *config.Config
}

// NewHandler creates a Handler wired to the given store and configuration.
func NewHandler(store *database.Store, tokens *auth.TokenIssuer, cfg *config.Config) *Handler {
	return &Handler{
		store:  store,
		comps:  competition.NewService(store),
		syncer: competition.NewSyncer(store),
		tokens: tokens,
		cfg:    cfg,
	}
}

// Health reports liveness and database readiness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, envelope{"status": status})
}

// resolveUserID returns the acting user: an explicit ID when provided (the
// API predates tokens and still accepts them), otherwise the bearer token's
// subject. Returns 0 when neither identifies a user.
func (h *Handler) resolveUserID(r *http.Request, explicit int64) int64 {
	if explicit > 0 {
		return explicit
	}
	if token := bearerToken(r); token != "" {
		if userID, _, err := h.tokens.Verify(token); err == nil {
			return userID
		}
	}
	return 0
}
