// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/goalpost/internal/database"
	"github.com/tomtom215/goalpost/internal/logging"
	"github.com/tomtom215/goalpost/internal/models"
)

// ListFriends returns the acting user's friends.
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID := h.resolveUserID(r, queryInt64(r, "userId"))
	if userID == 0 {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}
	friends, err := h.store.ListFriends(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "Friends not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"friends": friends})
}

// ListFriendRequests returns requests awaiting the acting user's response.
func (h *Handler) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID := h.resolveUserID(r, queryInt64(r, "userId"))
	if userID == 0 {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}
	requests, err := h.store.ListPendingFriendRequests(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "Friend requests not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"requests": requests})
}

// CreateFriendRequest sends a friend request by username. When the target
// already has a pending request towards the sender, the two are matched up
// and the friendship is created immediately.
func (h *Handler) CreateFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req friendRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	target, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		respondStoreError(w, r, err, "User not found.")
		return
	}
	if target.ID == req.UserID {
		respondError(w, http.StatusBadRequest, "You cannot add yourself as a friend.")
		return
	}

	if friends, err := h.store.AreFriends(r.Context(), req.UserID, target.ID); err != nil {
		respondStoreError(w, r, err, "User not found.")
		return
	} else if friends {
		respondError(w, http.StatusBadRequest, "You are already friends.")
		return
	}

	// A reverse pending request means both sides want this; accept it.
	if reverse, err := h.store.GetPendingRequestBetween(r.Context(), target.ID, req.UserID); err == nil {
		if err := h.store.AcceptFriendRequest(r.Context(), reverse.ID, req.UserID); err != nil {
			respondStoreError(w, r, err, "Friend request not found.")
			return
		}
		logging.Ctx(r.Context()).Info().
			Int64("user_id", req.UserID).
			Int64("friend_id", target.ID).
			Msg("Mutual friend requests matched")
		respondJSON(w, http.StatusOK, envelope{"accepted": true})
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		respondStoreError(w, r, err, "User not found.")
		return
	}

	request, err := h.store.CreateFriendRequest(r.Context(), req.UserID, target.ID)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEntry) {
			respondError(w, http.StatusBadRequest, "Friend request already sent.")
			return
		}
		respondStoreError(w, r, err, "User not found.")
		return
	}
	respondJSON(w, http.StatusCreated, envelope{"request": request})
}

// AcceptFriendRequest accepts a pending request addressed to the acting user.
func (h *Handler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := urlParamInt64(w, r, "requestID")
	if !ok {
		return
	}
	var req respondRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.store.AcceptFriendRequest(r.Context(), requestID, req.UserID); err != nil {
		respondStoreError(w, r, err, "Friend request not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"accepted": true})
}

// DeclineFriendRequest declines a pending request addressed to the acting user.
func (h *Handler) DeclineFriendRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := urlParamInt64(w, r, "requestID")
	if !ok {
		return
	}
	var req respondRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.store.DeclineFriendRequest(r.Context(), requestID, req.UserID); err != nil {
		respondStoreError(w, r, err, "Friend request not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"declined": true})
}

// RemoveFriend dissolves a friendship in both directions.
func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	friendID, ok := urlParamInt64(w, r, "friendID")
	if !ok {
		return
	}
	userID := h.resolveUserID(r, queryInt64(r, "userId"))
	if userID == 0 {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.store.RemoveFriend(r.Context(), userID, friendID); err != nil {
		respondStoreError(w, r, err, "Friend not found.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"removed": true})
}

// UserSummary returns a friends-only profile summary: all-time completion
// totals, last-7-days minutes, and the state of each goal over its current
// period.
func (h *Handler) UserSummary(w http.ResponseWriter, r *http.Request) {
	profileID, ok := urlParamInt64(w, r, "profileUserID")
	if !ok {
		return
	}
	viewerID := h.resolveUserID(r, queryInt64(r, "viewerId"))
	if viewerID == 0 {
		respondError(w, http.StatusBadRequest, "viewerId is required")
		return
	}

	if viewerID != profileID {
		friends, err := h.store.AreFriends(r.Context(), viewerID, profileID)
		if err != nil {
			respondStoreError(w, r, err, "User not found.")
			return
		}
		if !friends {
			respondError(w, http.StatusForbidden, "You can only view profiles of your friends.")
			return
		}
	}

	user, err := h.store.GetUserByID(r.Context(), profileID)
	if err != nil {
		respondStoreError(w, r, err, "User not found.")
		return
	}

	count, minutes, err := h.store.UserCompletionTotals(r.Context(), profileID)
	if err != nil {
		respondStoreError(w, r, err, "User not found.")
		return
	}
	weekAgo := time.Now().AddDate(0, 0, -6).Format(dateLayout)
	recentMinutes, err := h.store.UserMinutesSince(r.Context(), profileID, weekAgo)
	if err != nil {
		respondStoreError(w, r, err, "User not found.")
		return
	}

	goals, err := h.store.ListGoalsByUser(r.Context(), profileID)
	if err != nil {
		respondStoreError(w, r, err, "User not found.")
		return
	}
	progress := make([]models.GoalProgress, 0, len(goals))
	for _, g := range goals {
		c, m, err := h.store.CompletionStats(r.Context(), g.ID, g.StartDate, g.EndDate)
		if err != nil {
			respondStoreError(w, r, err, "User not found.")
			return
		}
		progress = append(progress, models.GoalProgress{
			ID:               g.ID,
			Title:            g.Title,
			Type:             g.Type,
			DurationMinutes:  g.DurationMinutes,
			StartDate:        g.StartDate,
			EndDate:          g.EndDate,
			CompletedMinutes: m,
			CompletionCount:  c,
		})
	}

	respondJSON(w, http.StatusOK, envelope{
		"user":              envelope{"id": user.ID, "username": user.Username},
		"total_completions": count,
		"total_minutes":     minutes,
		"last_week_minutes": recentMinutes,
		"goals":             progress,
	})
}
