// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/goalpost/internal/auth"
	"github.com/tomtom215/goalpost/internal/config"
	"github.com/tomtom215/goalpost/internal/database"
)

type testServer struct {
	store   *database.Store
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := database.NewMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{}
	cfg.Security.BcryptCost = 4
	cfg.Security.CORSOrigins = []string{"*"}
	cfg.Security.RateLimitDisabled = true

	h := NewHandler(store, auth.NewTokenIssuer("test-secret-long-enough-for-hs256-use", time.Hour), cfg)
	return &testServer{store: store, handler: NewRouter(h, cfg).Setup()}
}

// do issues a request and decodes the envelope response.
func (ts *testServer) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	return rec.Code, decoded
}

func (ts *testServer) register(t *testing.T, username string) int64 {
	t.Helper()
	code, body := ts.do(t, http.MethodPost, "/api/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code, "body: %v", body)
	user := body["user"].(map[string]any)
	return int64(user["id"].(float64))
}

func (ts *testServer) createCompetition(t *testing.T, userID int64, title string) int64 {
	t.Helper()
	code, body := ts.do(t, http.MethodPost, "/api/competition", map[string]any{
		"userId": userID, "title": title, "description": "",
	})
	require.Equal(t, http.StatusCreated, code, "body: %v", body)
	comp := body["competition"].(map[string]any)
	return int64(comp["id"].(float64))
}

func (ts *testServer) createGoal(t *testing.T, userID int64, title, goalType string) int64 {
	t.Helper()
	code, body := ts.do(t, http.MethodPost, "/api/goals", map[string]any{
		"userId": userID, "title": title, "type": goalType,
	})
	require.Equal(t, http.StatusCreated, code, "body: %v", body)
	goal := body["goal"].(map[string]any)
	return int64(goal["id"].(float64))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	code, body := ts.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodPost, "/api/register", map[string]any{
		"username": "ab", "email": "not-an-email", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	code, body := ts.do(t, http.MethodPost, "/api/register", map[string]any{
		"username": "alice2", "email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already registered.", body["error"])
}

func TestLoginFlows(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "bob")

	// By username.
	code, body := ts.do(t, http.MethodPost, "/api/login", map[string]any{
		"login": "bob", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["token"])

	// By email.
	code, _ = ts.do(t, http.MethodPost, "/api/login", map[string]any{
		"login": "bob@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, code)

	// Wrong password and unknown user both return 401 with the same message.
	code, body = ts.do(t, http.MethodPost, "/api/login", map[string]any{
		"login": "bob", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password.", body["error"])

	code, body = ts.do(t, http.MethodPost, "/api/login", map[string]any{
		"login": "nobody", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password.", body["error"])
}

func TestGoalLifecycle(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	code, body := ts.do(t, http.MethodPost, "/api/goals", map[string]any{
		"userId": alice, "title": "Read", "type": "weekly", "startDate": "2026-09-06",
	})
	require.Equal(t, http.StatusCreated, code)
	goal := body["goal"].(map[string]any)
	// 2026-09-06 is a Sunday; the weekly window starts the previous Monday.
	assert.Equal(t, "2026-08-31", goal["start_date"])
	assert.Equal(t, "2026-09-06", goal["end_date"])
	goalID := int64(goal["id"].(float64))

	// Complete it twice on the same date; the second call replaces.
	code, _ = ts.do(t, http.MethodPost, fmt.Sprintf("/api/goals/%d/complete", goalID), map[string]any{
		"userId": alice, "date": "2026-09-01", "durationMinutes": 20,
	})
	require.Equal(t, http.StatusOK, code)
	code, body = ts.do(t, http.MethodPost, fmt.Sprintf("/api/goals/%d/complete", goalID), map[string]any{
		"userId": alice, "date": "2026-09-01", "durationMinutes": 45,
	})
	require.Equal(t, http.StatusOK, code)
	completion := body["completion"].(map[string]any)
	assert.Equal(t, float64(45), completion["duration_minutes"])

	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/goals/%d/completions", goalID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["completions"].([]any), 1)

	// Someone else cannot complete it.
	bob := ts.register(t, "bob")
	code, body = ts.do(t, http.MethodPost, fmt.Sprintf("/api/goals/%d/complete", goalID), map[string]any{
		"userId": bob, "durationMinutes": 10,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You can only complete your own goals.", body["error"])

	code, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/goals/%d?userId=%d", goalID, alice), nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/goals/%d/completions", goalID), nil)
	assert.Equal(t, http.StatusOK, code, "completions of a deleted goal are simply empty")
}

func TestCompetitionAggregationScenario(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	compID := ts.createCompetition(t, alice, "Push-ups")

	// Log 30 manual minutes.
	code, _ := ts.do(t, http.MethodPost, "/api/competition/log", map[string]any{
		"userId": alice, "competitionId": compID, "durationMinutes": 30,
	})
	require.Equal(t, http.StatusOK, code)

	// Complete a matching goal for 40 minutes.
	goalID := ts.createGoal(t, alice, "Push-ups", "daily")
	code, _ = ts.do(t, http.MethodPost, fmt.Sprintf("/api/goals/%d/complete", goalID), map[string]any{
		"userId": alice, "durationMinutes": 40,
	})
	require.Equal(t, http.StatusOK, code)

	code, body := ts.do(t, http.MethodGet, fmt.Sprintf("/api/competition/%d?userId=%d", compID, alice), nil)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, float64(70), user["total_minutes"])
	assert.Equal(t, "1", user["rank"])
	assert.Equal(t, float64(40), user["goal_completion_minutes"])

	// The detail payload itemizes both sources; manual rows carry their IDs.
	manual := user["manual_log_entries"].([]any)
	require.Len(t, manual, 1)
	assert.Greater(t, manual[0].(map[string]any)["id"].(float64), float64(0))
	assert.Equal(t, float64(30), manual[0].(map[string]any)["minutes"])
	goalEntries := user["goal_completion_entries"].([]any)
	require.Len(t, goalEntries, 1)
	assert.Equal(t, float64(40), goalEntries[0].(map[string]any)["minutes"])
	assert.Equal(t, float64(goalID), goalEntries[0].(map[string]any)["goal_id"])

	// Remove 25: total drops to 45 everywhere.
	code, _ = ts.do(t, http.MethodPost, "/api/competition/remove", map[string]any{
		"userId": alice, "competitionId": compID, "amount": 25,
	})
	require.Equal(t, http.StatusOK, code)

	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/competition/%d?userId=%d", compID, alice), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(45), body["user"].(map[string]any)["total_minutes"])

	code, body = ts.do(t, http.MethodGet,
		fmt.Sprintf("/api/competition/%d/participant/%d", compID, alice), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(45), body["total_minutes"])

	// The list endpoint reports the same total.
	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/competitions?userId=%d", alice), nil)
	require.Equal(t, http.StatusOK, code)
	comps := body["competitions"].([]any)
	require.Len(t, comps, 1)
	assert.Equal(t, true, comps[0].(map[string]any)["joined"])
	assert.Equal(t, float64(45), comps[0].(map[string]any)["total_minutes"])

	// Removing more than the remaining total names the ceiling.
	code, body = ts.do(t, http.MethodPost, "/api/competition/remove", map[string]any{
		"userId": alice, "competitionId": compID, "amount": 60,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cannot remove 60 minutes. You only have 45 minutes.", body["error"])
}

func TestCompetitionDetailLedgerIsDeletable(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	compID := ts.createCompetition(t, alice, "Plank")

	code, _ := ts.do(t, http.MethodPost, "/api/competition/log", map[string]any{
		"userId": alice, "competitionId": compID, "durationMinutes": 30,
	})
	require.Equal(t, http.StatusOK, code)

	// The detail response is the only place clients learn log row IDs;
	// deleting a discovered entry must work end to end.
	code, body := ts.do(t, http.MethodGet, fmt.Sprintf("/api/competition/%d?userId=%d", compID, alice), nil)
	require.Equal(t, http.StatusOK, code)
	manual := body["user"].(map[string]any)["manual_log_entries"].([]any)
	require.Len(t, manual, 1)
	logID := int64(manual[0].(map[string]any)["id"].(float64))

	code, _ = ts.do(t, http.MethodDelete,
		fmt.Sprintf("/api/competition/log/%d?userId=%d", logID, alice), nil)
	require.Equal(t, http.StatusOK, code)

	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/competition/%d?userId=%d", compID, alice), nil)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, float64(0), user["total_minutes"])
	assert.Empty(t, user["manual_log_entries"].([]any))
}

func TestCompetitionMembershipGate(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	compID := ts.createCompetition(t, alice, "Running")

	// Bob completes 50 matching minutes but is not a member.
	goalID := ts.createGoal(t, bob, "Running", "daily")
	code, _ := ts.do(t, http.MethodPost, fmt.Sprintf("/api/goals/%d/complete", goalID), map[string]any{
		"userId": bob, "durationMinutes": 50,
	})
	require.Equal(t, http.StatusOK, code)

	code, body := ts.do(t, http.MethodGet, fmt.Sprintf("/api/competition/%d?userId=%d", compID, bob), nil)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, false, user["joined"])
	assert.Equal(t, float64(0), user["total_minutes"])

	// Logging positive time as a non-member is rejected.
	code, body = ts.do(t, http.MethodPost, "/api/competition/log", map[string]any{
		"userId": bob, "competitionId": compID, "durationMinutes": 30,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You must join this competition first.", body["error"])

	// A 0-minute log joins; the 50 goal minutes appear.
	code, body = ts.do(t, http.MethodPost, "/api/competition/log", map[string]any{
		"userId": bob, "competitionId": compID, "durationMinutes": 0,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["joined"])

	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/competition/%d?userId=%d", compID, bob), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(50), body["user"].(map[string]any)["total_minutes"])
}

func TestCompetitionCreatorOnlyOperations(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	compID := ts.createCompetition(t, alice, "Chess")

	code, body := ts.do(t, http.MethodPost, fmt.Sprintf("/api/competition/%d/update", compID), map[string]any{
		"userId": bob, "title": "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only the creator can update this competition.", body["error"])

	code, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/competition/%d?userId=%d", compID, bob), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = ts.do(t, http.MethodPost, fmt.Sprintf("/api/competition/%d/update", compID), map[string]any{
		"userId": alice, "title": "Speed Chess",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Speed Chess", body["competition"].(map[string]any)["title"])

	// Creator cannot leave.
	code, body = ts.do(t, http.MethodPost, "/api/competition/leave", map[string]any{
		"userId": alice, "competitionId": compID,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "The creator cannot leave the competition.", body["error"])

	code, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/competition/%d?userId=%d", compID, alice), nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/competition/%d", compID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestInvitationFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	compID := ts.createCompetition(t, alice, "Yoga")

	code, body := ts.do(t, http.MethodPost, "/api/competition/invite", map[string]any{
		"competitionId": compID, "inviterId": alice, "username": "bob",
	})
	require.Equal(t, http.StatusCreated, code)
	inviteID := int64(body["invitation"].(map[string]any)["id"].(float64))

	// Duplicate pending invite rejected.
	code, body = ts.do(t, http.MethodPost, "/api/competition/invite", map[string]any{
		"competitionId": compID, "inviterId": alice, "username": "bob",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "An invitation is already pending for this user.", body["error"])

	// Unknown username is a 404.
	code, _ = ts.do(t, http.MethodPost, "/api/competition/invite", map[string]any{
		"competitionId": compID, "inviterId": alice, "username": "ghost",
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/competition/invitations?userId=%d", bob), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["invitations"].([]any), 1)

	// Accepting joins bob with a 0-minute row.
	code, _ = ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/competition/invitations/%d/accept", inviteID), map[string]any{"userId": bob})
	require.Equal(t, http.StatusOK, code)

	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/competition/%d?userId=%d", compID, bob), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["user"].(map[string]any)["joined"])

	// Inviting an existing member is rejected.
	code, body = ts.do(t, http.MethodPost, "/api/competition/invite", map[string]any{
		"competitionId": compID, "inviterId": alice, "username": "bob",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User is already a member of this competition.", body["error"])
}

func TestFriendFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")

	code, _ := ts.do(t, http.MethodPost, "/api/friends/request", map[string]any{
		"userId": alice, "username": "bob",
	})
	require.Equal(t, http.StatusCreated, code)

	// Bob sending one back matches the two requests up immediately.
	code, body := ts.do(t, http.MethodPost, "/api/friends/request", map[string]any{
		"userId": bob, "username": "alice",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["accepted"])

	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/friends?userId=%d", alice), nil)
	require.Equal(t, http.StatusOK, code)
	friends := body["friends"].([]any)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].(map[string]any)["username"])

	// Friends can view each other's summary; strangers cannot.
	code, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/summary?viewerId=%d", bob, alice), nil)
	assert.Equal(t, http.StatusOK, code)

	carol := ts.register(t, "carol")
	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/summary?viewerId=%d", bob, carol), nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You can only view profiles of your friends.", body["error"])

	// Unfriending removes both directions and closes the summary again.
	code, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/friends/%d?userId=%d", bob, alice), nil)
	require.Equal(t, http.StatusOK, code)

	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/friends?userId=%d", alice), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["friends"].([]any))

	code, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/summary?viewerId=%d", bob, alice), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/friends/%d?userId=%d", bob, alice), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDeletionSyncThroughAPI(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	compID := ts.createCompetition(t, alice, "Run")
	goalID := ts.createGoal(t, alice, "Run", "daily")

	// Mirrored 30-minute entries on both sides.
	code, _ := ts.do(t, http.MethodPost, fmt.Sprintf("/api/goals/%d/complete", goalID), map[string]any{
		"userId": alice, "date": "2026-09-01", "durationMinutes": 30,
	})
	require.Equal(t, http.StatusOK, code)
	code, body := ts.do(t, http.MethodPost, "/api/competition/log", map[string]any{
		"userId": alice, "competitionId": compID, "durationMinutes": 30, "date": "2026-09-01",
	})
	require.Equal(t, http.StatusOK, code)
	logID := int64(body["log"].(map[string]any)["id"].(float64))

	// Deleting the manual log also removes the mirroring completion.
	code, _ = ts.do(t, http.MethodDelete,
		fmt.Sprintf("/api/competition/log/%d?userId=%d", logID, alice), nil)
	require.Equal(t, http.StatusOK, code)

	code, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/goals/%d/completions", goalID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["completions"].([]any))

	total, _, err := ts.totalFor(alice, compID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestDeleteCompletionSyncsLog(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	compID := ts.createCompetition(t, alice, "Run")
	goalID := ts.createGoal(t, alice, "Run", "daily")

	code, _ := ts.do(t, http.MethodPost, fmt.Sprintf("/api/goals/%d/complete", goalID), map[string]any{
		"userId": alice, "date": "2026-09-01", "durationMinutes": 30,
	})
	require.Equal(t, http.StatusOK, code)
	code, _ = ts.do(t, http.MethodPost, "/api/competition/log", map[string]any{
		"userId": alice, "competitionId": compID, "durationMinutes": 30, "date": "2026-09-01",
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodDelete,
		fmt.Sprintf("/api/competition/goal-completion/%d/2026-09-01?userId=%d", goalID, alice), nil)
	require.Equal(t, http.StatusOK, code)

	total, _, err := ts.totalFor(alice, compID)
	require.NoError(t, err)
	assert.Equal(t, 0, total, "both the completion and the mirroring log are gone")
}

func TestUnknownRoutesAndBadParams(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodGet, "/api/competition/notanumber", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid competitionID", body["error"])

	code, body = ts.do(t, http.MethodGet, "/api/competition/9999", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Competition not found.", body["error"])
}

// totalFor reads a user's total via the store-backed service, for asserting
// cross-endpoint consistency without another HTTP round trip.
func (ts *testServer) totalFor(userID, compID int64) (int, bool, error) {
	ctx := context.Background()
	comp, err := ts.store.GetCompetition(ctx, compID)
	if err != nil {
		return 0, false, err
	}
	manual, err := ts.store.SumLogs(ctx, compID, userID)
	if err != nil {
		return 0, false, err
	}
	goal, err := ts.store.SumMatchingGoalMinutes(ctx, userID, comp.Title)
	if err != nil {
		return 0, false, err
	}
	total := manual + goal
	if total < 0 {
		total = 0
	}
	return total, true, nil
}
