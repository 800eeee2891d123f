// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/goalpost/internal/competition"
	"github.com/tomtom215/goalpost/internal/logging"
	"github.com/tomtom215/goalpost/internal/metrics"
	"github.com/tomtom215/goalpost/internal/models"
)

// ListCompetitions returns all competitions. With a userId parameter each
// entry carries the acting user's membership state and current total.
func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	comps, err := h.store.ListCompetitions(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "Competitions not found.")
		return
	}

	userID := h.resolveUserID(r, queryInt64(r, "userId"))
	if userID == 0 {
		respondJSON(w, http.StatusOK, envelope{"competitions": comps})
		return
	}

	type listEntry struct {
		models.Competition
		Joined       bool `json:"joined"`
		TotalMinutes int  `json:"total_minutes"`
	}
	entries := make([]listEntry, 0, len(comps))
	for i := range comps {
		total, member, err := h.comps.UserTotal(r.Context(), &comps[i], userID)
		if err != nil {
			respondStoreError(w, r, err, "Competitions not found.")
			return
		}
		entries = append(entries, listEntry{Competition: comps[i], Joined: member, TotalMinutes: total})
	}
	respondJSON(w, http.StatusOK, envelope{"competitions": entries})
}

// CreateCompetition creates a competition; the creator joins automatically.
func (h *Handler) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req createCompetitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comp, err := h.store.CreateCompetition(r.Context(), req.UserID, req.Title, req.Description, today())
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("competition_id", comp.ID).
		Int64("creator_id", req.UserID).
		Str("title", comp.Title).
		Msg("Competition created")
	respondJSON(w, http.StatusCreated, envelope{"competition": comp})
}

// GetCompetition returns a competition with its leaderboard and, when a
// userId is supplied, that user's total and rank.
func (h *Handler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	compID, ok := urlParamInt64(w, r, "competitionID")
	if !ok {
		return
	}
	comp, err := h.store.GetCompetition(r.Context(), compID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}

	board, err := h.comps.Leaderboard(r.Context(), comp)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}

	payload := envelope{"competition": comp, "leaderboard": board}

	if userID := h.resolveUserID(r, queryInt64(r, "userId")); userID != 0 {
		total, member, err := h.comps.UserTotal(r.Context(), comp, userID)
		if err != nil {
			respondStoreError(w, r, err, "Competition not found.")
			return
		}
		manual, goal, err := h.comps.Ledger(r.Context(), comp, userID)
		if err != nil {
			respondStoreError(w, r, err, "Competition not found.")
			return
		}
		goalMinutes := 0
		for _, e := range goal {
			goalMinutes += e.Minutes
		}
		rank := "-"
		for _, e := range board {
			if e.UserID == userID {
				rank = e.Rank
				break
			}
		}
		payload["user"] = envelope{
			"joined":                  member,
			"total_minutes":           total,
			"rank":                    rank,
			"goal_completion_minutes": goalMinutes,
			"manual_log_entries":      manual,
			"goal_completion_entries": goal,
		}
	}

	respondJSON(w, http.StatusOK, payload)
}

// UpdateCompetition changes a competition's title and description.
func (h *Handler) UpdateCompetition(w http.ResponseWriter, r *http.Request) {
	compID, ok := urlParamInt64(w, r, "competitionID")
	if !ok {
		return
	}
	var req updateCompetitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comp, err := h.store.GetCompetition(r.Context(), compID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	if comp.CreatorID != req.UserID {
		respondError(w, http.StatusForbidden, "Only the creator can update this competition.")
		return
	}

	if err := h.store.UpdateCompetition(r.Context(), compID, req.UserID, req.Title, req.Description); err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	updated, err := h.store.GetCompetition(r.Context(), compID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"competition": updated})
}

// DeleteCompetition removes a competition, its logs, and its invitations.
func (h *Handler) DeleteCompetition(w http.ResponseWriter, r *http.Request) {
	compID, ok := urlParamInt64(w, r, "competitionID")
	if !ok {
		return
	}
	userID := h.resolveUserID(r, queryInt64(r, "userId"))
	if userID == 0 {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	comp, err := h.store.GetCompetition(r.Context(), compID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	if comp.CreatorID != userID {
		respondError(w, http.StatusForbidden, "Only the creator can delete this competition.")
		return
	}

	if err := h.store.DeleteCompetition(r.Context(), compID, userID); err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"deleted": true})
}

// LogTime appends time to a competition ledger. A 0-minute request from a
// non-member joins the competition instead.
func (h *Handler) LogTime(w http.ResponseWriter, r *http.Request) {
	var req logTimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comp, err := h.store.GetCompetition(r.Context(), req.CompetitionID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}

	date := req.Date
	if date == "" {
		date = today()
	}

	result, err := h.comps.LogTime(r.Context(), comp, req.UserID, req.DurationMinutes, date)
	if err != nil {
		if errors.Is(err, competition.ErrNotMember) {
			respondError(w, http.StatusForbidden, err.Error())
			return
		}
		respondStoreError(w, r, err, "Competition not found.")
		return
	}

	if result.Joined {
		metrics.CompetitionJoins.Inc()
		metrics.CompetitionTimeLogged.WithLabelValues("join").Inc()
		respondJSON(w, http.StatusOK, envelope{"joined": true})
		return
	}
	metrics.CompetitionTimeLogged.WithLabelValues("log").Inc()
	respondJSON(w, http.StatusOK, envelope{"log": result.Log})
}

// RemoveTime removes previously logged time by appending a negative ledger
// row, after validating the removable ceiling.
func (h *Handler) RemoveTime(w http.ResponseWriter, r *http.Request) {
	var req removeTimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comp, err := h.store.GetCompetition(r.Context(), req.CompetitionID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}

	log, err := h.comps.RemoveTime(r.Context(), comp, req.UserID, req.Amount, today())
	if err != nil {
		var re *competition.RemovalError
		switch {
		case errors.Is(err, competition.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &re):
			respondError(w, http.StatusBadRequest, re.Error())
		case errors.Is(err, competition.ErrNotMember):
			respondError(w, http.StatusForbidden, err.Error())
		default:
			respondStoreError(w, r, err, "Competition not found.")
		}
		return
	}

	metrics.CompetitionTimeLogged.WithLabelValues("remove").Inc()
	respondJSON(w, http.StatusOK, envelope{"log": log})
}

// LeaveCompetition removes the acting user's ledger rows and invitations.
// The creator cannot leave their own competition.
func (h *Handler) LeaveCompetition(w http.ResponseWriter, r *http.Request) {
	var req leaveCompetitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comp, err := h.store.GetCompetition(r.Context(), req.CompetitionID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	if comp.CreatorID == req.UserID {
		respondError(w, http.StatusBadRequest, "The creator cannot leave the competition.")
		return
	}

	if err := h.store.LeaveCompetition(r.Context(), req.CompetitionID, req.UserID); err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"left": true})
}

// DeleteLog removes one manual ledger row and best-effort deletes the
// mirroring goal completion.
func (h *Handler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	logID, ok := urlParamInt64(w, r, "logID")
	if !ok {
		return
	}
	userID := h.resolveUserID(r, queryInt64(r, "userId"))
	if userID == 0 {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	log, err := h.store.GetLog(r.Context(), logID)
	if err != nil {
		respondStoreError(w, r, err, "Log entry not found.")
		return
	}
	if log.UserID != userID {
		respondError(w, http.StatusForbidden, "You can only delete your own log entries.")
		return
	}

	if err := h.store.DeleteLog(r.Context(), logID, userID); err != nil {
		respondStoreError(w, r, err, "Log entry not found.")
		return
	}

	h.syncer.AfterLogDelete(r.Context(), log)
	respondJSON(w, http.StatusOK, envelope{"deleted": true})
}

// Participant returns a member's merged per-day timeline and total.
func (h *Handler) Participant(w http.ResponseWriter, r *http.Request) {
	compID, ok := urlParamInt64(w, r, "competitionID")
	if !ok {
		return
	}
	userID, ok := urlParamInt64(w, r, "userID")
	if !ok {
		return
	}

	comp, err := h.store.GetCompetition(r.Context(), compID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "User not found.")
		return
	}

	total, member, err := h.comps.UserTotal(r.Context(), comp, userID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	timeline, err := h.comps.ParticipantTimeline(r.Context(), comp, userID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"user":          envelope{"id": user.ID, "username": user.Username},
		"joined":        member,
		"total_minutes": total,
		"daily_totals":  timeline,
	})
}

// Invite invites a user into a competition by username.
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comp, err := h.store.GetCompetition(r.Context(), req.CompetitionID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}

	inviterMember, err := h.comps.IsMember(r.Context(), comp, req.InviterID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	if !inviterMember {
		respondError(w, http.StatusForbidden, "Only members can invite others.")
		return
	}

	invitee, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		respondStoreError(w, r, err, "User not found.")
		return
	}

	inviteeMember, err := h.comps.IsMember(r.Context(), comp, invitee.ID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	if inviteeMember {
		respondError(w, http.StatusBadRequest, "User is already a member of this competition.")
		return
	}

	pending, err := h.store.HasPendingInvitation(r.Context(), comp.ID, invitee.ID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	if pending {
		respondError(w, http.StatusBadRequest, "An invitation is already pending for this user.")
		return
	}

	inv, err := h.store.CreateInvitation(r.Context(), comp.ID, req.InviterID, invitee.ID)
	if err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}
	respondJSON(w, http.StatusCreated, envelope{"invitation": inv})
}

// ListInvitations returns pending invitations for a user, addressed by ID or
// by username.
func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	userID := h.resolveUserID(r, queryInt64(r, "userId"))
	if userID == 0 {
		if username := r.URL.Query().Get("username"); username != "" {
			user, err := h.store.GetUserByUsername(r.Context(), username)
			if err != nil {
				respondStoreError(w, r, err, "User not found.")
				return
			}
			userID = user.ID
		}
	}
	if userID == 0 {
		respondError(w, http.StatusBadRequest, "userId or username is required")
		return
	}

	invs, err := h.store.ListPendingInvitations(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "Invitations not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"invitations": invs})
}

// AcceptInvitation accepts a pending invitation and joins the competition
// with a 0-minute ledger row.
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	inviteID, ok := urlParamInt64(w, r, "inviteID")
	if !ok {
		return
	}
	var req respondRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inv, err := h.store.GetInvitation(r.Context(), inviteID)
	if err != nil {
		respondStoreError(w, r, err, "Invitation not found.")
		return
	}

	if err := h.store.RespondToInvitation(r.Context(), inviteID, req.UserID, models.StatusAccepted); err != nil {
		respondStoreError(w, r, err, "Invitation not found.")
		return
	}

	if _, err := h.store.InsertLog(r.Context(), inv.CompetitionID, req.UserID, 0, today()); err != nil {
		respondStoreError(w, r, err, "Competition not found.")
		return
	}

	metrics.CompetitionJoins.Inc()
	logging.Ctx(r.Context()).Info().
		Int64("competition_id", inv.CompetitionID).
		Int64("user_id", req.UserID).
		Msg("Invitation accepted")
	respondJSON(w, http.StatusOK, envelope{"accepted": true})
}

// DeclineInvitation declines a pending invitation.
func (h *Handler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	inviteID, ok := urlParamInt64(w, r, "inviteID")
	if !ok {
		return
	}
	var req respondRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.store.RespondToInvitation(r.Context(), inviteID, req.UserID, models.StatusDeclined); err != nil {
		respondStoreError(w, r, err, "Invitation not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"declined": true})
}
