// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/goalpost/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), username, username+"@example.com", "$2a$10$hash")
	require.NoError(t, err)
	return u
}

func TestCreateUserDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "alice2", "alice@example.com", "hash")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.CreateUser(ctx, "alice", "other@example.com", "hash")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestGetUserByLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "bob")

	byName, err := s.GetUserByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := s.GetUserByLogin(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.GetUserByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGoalCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "carol")

	dur := 30
	g, err := s.CreateGoal(ctx, &models.Goal{
		UserID: u.ID, Title: "Read", Description: "Books",
		DurationMinutes: &dur, Type: models.GoalTypeDaily,
		StartDate: "2026-09-01", EndDate: "2026-09-01",
	})
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.Equal(t, "Read", g.Title)
	require.NotNil(t, g.DurationMinutes)
	assert.Equal(t, 30, *g.DurationMinutes)

	g.Title = "Read More"
	require.NoError(t, s.UpdateGoal(ctx, g))

	got, err := s.GetGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read More", got.Title)

	// Other users cannot update or delete.
	other := createTestUser(t, s, "mallory")
	stolen := *g
	stolen.UserID = other.ID
	assert.ErrorIs(t, s.UpdateGoal(ctx, &stolen), ErrNotFound)
	assert.ErrorIs(t, s.DeleteGoal(ctx, g.ID, other.ID), ErrNotFound)

	require.NoError(t, s.DeleteGoal(ctx, g.ID, u.ID))
	_, err = s.GetGoal(ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertCompletionReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "dave")
	g, err := s.CreateGoal(ctx, &models.Goal{
		UserID: u.ID, Title: "Run", Type: models.GoalTypeDaily,
		StartDate: "2026-09-01", EndDate: "2026-09-01",
	})
	require.NoError(t, err)

	c1, err := s.UpsertCompletion(ctx, g.ID, "2026-09-01", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, c1.DurationMinutes)

	c2, err := s.UpsertCompletion(ctx, g.ID, "2026-09-01", 45)
	require.NoError(t, err)
	assert.Equal(t, 45, c2.DurationMinutes)
	assert.Equal(t, c1.ID, c2.ID, "same date must stay a single row")

	comps, err := s.ListCompletionsByGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, comps, 1)

	count, minutes, err := s.CompletionStats(ctx, g.ID, "2026-09-01", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 45, minutes)
}

func TestCreateCompetitionAutoJoinsCreator(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "erin")

	c, err := s.CreateCompetition(ctx, u.ID, "Push-ups", "Daily push-ups", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, "erin", c.CreatorName)

	member, err := s.HasLogRows(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, member, "creator gets a 0-minute membership row")

	sum, err := s.SumLogs(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
}

func TestSumMatchingGoalMinutes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "frank")

	g, err := s.CreateGoal(ctx, &models.Goal{
		UserID: u.ID, Title: " Run ", Type: models.GoalTypeDaily,
		StartDate: "2026-09-01", EndDate: "2026-09-01",
	})
	require.NoError(t, err)

	_, err = s.UpsertCompletion(ctx, g.ID, "2026-09-01", 30)
	require.NoError(t, err)
	_, err = s.UpsertCompletion(ctx, g.ID, "2026-09-02", 0)
	require.NoError(t, err)

	// Title matching is case-insensitive and whitespace-trimmed, and
	// zero-duration completions never count.
	sum, err := s.SumMatchingGoalMinutes(ctx, u.ID, "run")
	require.NoError(t, err)
	assert.Equal(t, 30, sum)

	sum, err = s.SumMatchingGoalMinutes(ctx, u.ID, "walk")
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
}

func TestDeletionSyncRemovesSingleRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "grace")
	comp, err := s.CreateCompetition(ctx, u.ID, "Run", "", "2026-09-01")
	require.NoError(t, err)

	g, err := s.CreateGoal(ctx, &models.Goal{
		UserID: u.ID, Title: "Run", Type: models.GoalTypeDaily,
		StartDate: "2026-09-01", EndDate: "2026-09-01",
	})
	require.NoError(t, err)
	_, err = s.UpsertCompletion(ctx, g.ID, "2026-09-01", 30)
	require.NoError(t, err)

	deleted, err := s.DeleteMostRecentMatchingCompletion(ctx, u.ID, comp.Title, "2026-09-01", 30)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Second attempt has nothing left to delete.
	deleted, err = s.DeleteMostRecentMatchingCompletion(ctx, u.ID, comp.Title, "2026-09-01", 30)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteMostRecentMatchingLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "heidi")
	comp, err := s.CreateCompetition(ctx, u.ID, "Run", "", "2026-09-01")
	require.NoError(t, err)

	_, err = s.InsertLog(ctx, comp.ID, u.ID, 30, "2026-09-01")
	require.NoError(t, err)
	_, err = s.InsertLog(ctx, comp.ID, u.ID, 30, "2026-09-01")
	require.NoError(t, err)

	deleted, err := s.DeleteMostRecentMatchingLog(ctx, comp.ID, u.ID, "2026-09-01", 30)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Exactly one of the two identical rows is gone.
	sum, err := s.SumLogs(ctx, comp.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, sum)
}

func TestInvitationLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	inviter := createTestUser(t, s, "ivan")
	invitee := createTestUser(t, s, "judy")
	comp, err := s.CreateCompetition(ctx, inviter.ID, "Yoga", "", "2026-09-01")
	require.NoError(t, err)

	inv, err := s.CreateInvitation(ctx, comp.ID, inviter.ID, invitee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, inv.Status)

	pending, err := s.HasPendingInvitation(ctx, comp.ID, invitee.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	list, err := s.ListPendingInvitations(ctx, invitee.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Yoga", list[0].CompetitionTitle)
	assert.Equal(t, "ivan", list[0].InviterUsername)

	// Only the invitee may respond.
	assert.ErrorIs(t, s.RespondToInvitation(ctx, inv.ID, inviter.ID, models.StatusAccepted), ErrNotFound)

	require.NoError(t, s.RespondToInvitation(ctx, inv.ID, invitee.ID, models.StatusAccepted))

	// Responding twice fails, the invitation is no longer pending.
	assert.ErrorIs(t, s.RespondToInvitation(ctx, inv.ID, invitee.ID, models.StatusDeclined), ErrNotFound)
}

func TestGoalLeaderboardWindowAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createTestUser(t, s, "kim")
	b := createTestUser(t, s, "leo")

	ga, err := s.CreateGoal(ctx, &models.Goal{
		UserID: a.ID, Title: "Read", Type: models.GoalTypeDaily,
		StartDate: "2026-09-01", EndDate: "2026-09-01",
	})
	require.NoError(t, err)
	gb, err := s.CreateGoal(ctx, &models.Goal{
		UserID: b.ID, Title: "Run", Type: models.GoalTypeDaily,
		StartDate: "2026-09-01", EndDate: "2026-09-01",
	})
	require.NoError(t, err)

	_, err = s.UpsertCompletion(ctx, ga.ID, "2026-08-15", 60)
	require.NoError(t, err)
	_, err = s.UpsertCompletion(ctx, gb.ID, "2026-09-01", 40)
	require.NoError(t, err)

	all, err := s.GoalLeaderboard(ctx, "", "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "kim", all[0].Username)
	assert.Equal(t, 60, all[0].TotalMinutes)

	// The August completion falls outside a September window.
	sept, err := s.GoalLeaderboard(ctx, "2026-09-01", "2026-09-30", 0)
	require.NoError(t, err)
	require.Len(t, sept, 2)
	assert.Equal(t, "leo", sept[0].Username)
	assert.Equal(t, 40, sept[0].TotalMinutes)
	assert.Equal(t, 0, sept[1].TotalMinutes)

	top, err := s.GoalLeaderboard(ctx, "", "", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "kim", top[0].Username)
}

func TestFriendRequestFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createTestUser(t, s, "alice")
	b := createTestUser(t, s, "bob")

	fr, err := s.CreateFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = s.CreateFriendRequest(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	reqs, err := s.ListPendingFriendRequests(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "alice", reqs[0].RequesterUsername)

	require.NoError(t, s.AcceptFriendRequest(ctx, fr.ID, b.ID))

	// Friendship is symmetric.
	ok, err := s.AreFriends(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.AreFriends(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	friends, err := s.ListFriends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Username)

	require.NoError(t, s.RemoveFriend(ctx, a.ID, b.ID))
	ok, err = s.AreFriends(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.migrate(context.Background()))
}
