// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/goalpost/internal/database"
	"github.com/tomtom215/goalpost/internal/logging"
	"github.com/tomtom215/goalpost/internal/validation"
)

// envelope is the JSON response shape: {"success": bool, ...payload}, with
// an "error" message on failure.
type envelope map[string]any

// respondJSON sends a success envelope with the given payload fields.
func respondJSON(w http.ResponseWriter, status int, payload envelope) {
	if payload == nil {
		payload = envelope{}
	}
	if _, ok := payload["success"]; !ok {
		payload["success"] = true
	}

	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends a failure envelope with the given message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{"success": false, "error": message})
}

// respondStoreError translates store errors into the API error taxonomy.
// Unrecognized errors become a generic 500 so internals never leak.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, database.ErrEmailTaken):
		respondError(w, http.StatusBadRequest, "Email already registered.")
	case errors.Is(err, database.ErrUsernameTaken):
		respondError(w, http.StatusBadRequest, "Username already taken.")
	case errors.Is(err, database.ErrDuplicateEntry):
		respondError(w, http.StatusBadRequest, "Already exists.")
	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("Database error")
		respondError(w, http.StatusInternalServerError, "Database error")
	}
}

// decodeJSON decodes and validates a request body. On failure it writes the
// error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return false
	}
	return true
}

// urlParamInt64 parses a chi URL parameter as int64, writing a 400 response
// on failure.
func urlParamInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v < 1 {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return v, true
}

// urlParamDate parses a chi URL parameter as a YYYY-MM-DD date, writing a
// 400 response and returning "" on failure.
func urlParamDate(w http.ResponseWriter, r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if _, err := time.Parse(dateLayout, v); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return ""
	}
	return v
}

// queryInt64 parses an optional query parameter as int64, returning 0 when
// absent or malformed.
func queryInt64(r *http.Request, name string) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || v < 1 {
		return 0
	}
	return v
}

// today returns the current date as YYYY-MM-DD.
func today() string {
	return time.Now().Format(dateLayout)
}

// bearerToken extracts a bearer token from the Authorization header, or "".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}
	return ""
}
