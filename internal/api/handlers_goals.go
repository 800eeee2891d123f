// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

import (
	"net/http"

	"github.com/tomtom215/goalpost/internal/logging"
	"github.com/tomtom215/goalpost/internal/metrics"
	"github.com/tomtom215/goalpost/internal/models"
)

// CreateGoal creates a goal, deriving its date range from the goal type.
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	refDate := req.StartDate
	if refDate == "" {
		refDate = today()
	}
	start, end, err := goalDateRange(req.Type, refDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.store.CreateGoal(r.Context(), &models.Goal{
		UserID:          req.UserID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		StartDate:       start,
		EndDate:         end,
	})
	if err != nil {
		respondStoreError(w, r, err, "Goal not found.")
		return
	}

	respondJSON(w, http.StatusCreated, envelope{"goal": goal})
}

// ListGoals returns all goals owned by a user.
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt64(w, r, "userID")
	if !ok {
		return
	}
	goals, err := h.store.ListGoalsByUser(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "Goals not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"goals": goals})
}

// UpdateGoal updates a goal's fields, re-deriving the date range.
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := urlParamInt64(w, r, "goalID")
	if !ok {
		return
	}
	var req updateGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	refDate := req.StartDate
	if refDate == "" {
		refDate = today()
	}
	start, end, err := goalDateRange(req.Type, refDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.store.UpdateGoal(r.Context(), &models.Goal{
		ID:              goalID,
		UserID:          req.UserID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		StartDate:       start,
		EndDate:         end,
	})
	if err != nil {
		respondStoreError(w, r, err, "Goal not found.")
		return
	}

	goal, err := h.store.GetGoal(r.Context(), goalID)
	if err != nil {
		respondStoreError(w, r, err, "Goal not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"goal": goal})
}

// DeleteGoal removes a goal and its completions.
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := urlParamInt64(w, r, "goalID")
	if !ok {
		return
	}
	userID := h.resolveUserID(r, queryInt64(r, "userId"))
	if userID == 0 {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.store.DeleteGoal(r.Context(), goalID, userID); err != nil {
		respondStoreError(w, r, err, "Goal not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"deleted": true})
}

// CompleteGoal records (or replaces) a completion for a goal on a date.
func (h *Handler) CompleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := urlParamInt64(w, r, "goalID")
	if !ok {
		return
	}
	var req completeGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.store.GetGoal(r.Context(), goalID)
	if err != nil {
		respondStoreError(w, r, err, "Goal not found.")
		return
	}
	if goal.UserID != req.UserID {
		respondError(w, http.StatusForbidden, "You can only complete your own goals.")
		return
	}

	date := req.Date
	if date == "" {
		date = today()
	}

	completion, err := h.store.UpsertCompletion(r.Context(), goalID, date, req.DurationMinutes)
	if err != nil {
		respondStoreError(w, r, err, "Goal not found.")
		return
	}

	metrics.GoalCompletionsLogged.Inc()
	respondJSON(w, http.StatusOK, envelope{"completion": completion})
}

// ListCompletions returns all completions recorded for a goal.
func (h *Handler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	goalID, ok := urlParamInt64(w, r, "goalID")
	if !ok {
		return
	}
	completions, err := h.store.ListCompletionsByGoal(r.Context(), goalID)
	if err != nil {
		respondStoreError(w, r, err, "Goal not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"completions": completions})
}

// DeleteGoalCompletion removes a completion and best-effort deletes one
// mirroring manual log row in the most recent same-titled competition.
func (h *Handler) DeleteGoalCompletion(w http.ResponseWriter, r *http.Request) {
	goalID, ok := urlParamInt64(w, r, "goalID")
	if !ok {
		return
	}
	date := urlParamDate(w, r, "date")
	if date == "" {
		return
	}
	userID := h.resolveUserID(r, queryInt64(r, "userId"))
	if userID == 0 {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	goal, err := h.store.GetGoal(r.Context(), goalID)
	if err != nil {
		respondStoreError(w, r, err, "Goal not found.")
		return
	}
	if goal.UserID != userID {
		respondError(w, http.StatusForbidden, "You can only delete your own completions.")
		return
	}

	// Capture the duration before the row disappears; sync needs it.
	completion, err := h.store.GetCompletion(r.Context(), goalID, date)
	if err != nil {
		respondStoreError(w, r, err, "Completion not found.")
		return
	}

	if err := h.store.DeleteCompletion(r.Context(), goalID, userID, date); err != nil {
		respondStoreError(w, r, err, "Completion not found.")
		return
	}

	h.syncer.AfterCompletionDelete(r.Context(), userID, goal.Title, date, completion.DurationMinutes)

	logging.Ctx(r.Context()).Info().
		Int64("goal_id", goalID).
		Str("date", date).
		Msg("Goal completion deleted")
	respondJSON(w, http.StatusOK, envelope{"deleted": true})
}

// Progress summarizes a user's goals over a window. Without explicit
// startDate/endDate parameters each goal is measured over its own range.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt64(w, r, "userID")
	if !ok {
		return
	}
	windowStart := r.URL.Query().Get("startDate")
	windowEnd := r.URL.Query().Get("endDate")

	goals, err := h.store.ListGoalsByUser(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "Goals not found.")
		return
	}

	progress := make([]models.GoalProgress, 0, len(goals))
	for _, g := range goals {
		start, end := g.StartDate, g.EndDate
		if windowStart != "" {
			start = windowStart
		}
		if windowEnd != "" {
			end = windowEnd
		}
		count, minutes, err := h.store.CompletionStats(r.Context(), g.ID, start, end)
		if err != nil {
			respondStoreError(w, r, err, "Goals not found.")
			return
		}
		progress = append(progress, models.GoalProgress{
			ID:               g.ID,
			Title:            g.Title,
			Type:             g.Type,
			DurationMinutes:  g.DurationMinutes,
			StartDate:        g.StartDate,
			EndDate:          g.EndDate,
			CompletedMinutes: minutes,
			CompletionCount:  count,
		})
	}
	respondJSON(w, http.StatusOK, envelope{"progress": progress})
}

// Leaderboard returns the global goals leaderboard, optionally windowed by
// startDate/endDate and truncated by limit (capped at the configured maximum).
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := int(queryInt64(r, "limit"))
	if limit == 0 {
		limit = h.cfg.API.DefaultPageSize
	}
	if h.cfg.API.MaxPageSize > 0 && limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}

	rows, err := h.store.GoalLeaderboard(r.Context(),
		r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"), limit)
	if err != nil {
		respondStoreError(w, r, err, "Leaderboard not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"leaderboard": rows})
}
