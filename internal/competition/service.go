// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

// Package competition implements the time aggregation rules for
// competitions.
//
// A user's total in a competition is derived, never stored:
//
//	total = max(0, sum(manual ledger rows) + sum(matching goal completions))
//
// where matching goal completions are the user's positive-duration
// completions on goals whose trimmed, lowercased title equals the
// competition's. Non-members always read as zero, regardless of matching
// goal activity.
package competition

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/goalpost/internal/models"
)

// ErrNotMember is returned when a non-member tries to log time.
var ErrNotMember = errors.New("You must join this competition first.")

// ErrInvalidAmount is returned when a removal amount is not positive.
var ErrInvalidAmount = errors.New("Amount must be a positive number of minutes.")

// RemovalError reports a removal larger than the user's current total.
type RemovalError struct {
	Requested int
	Available int
}

func (e *RemovalError) Error() string {
	return fmt.Sprintf("Cannot remove %d minutes. You only have %d minutes.", e.Requested, e.Available)
}

// Store is the persistence surface the service needs. *database.Store
// satisfies it.
type Store interface {
	HasLogRows(ctx context.Context, competitionID, userID int64) (bool, error)
	SumLogs(ctx context.Context, competitionID, userID int64) (int, error)
	SumMatchingGoalMinutes(ctx context.Context, userID int64, title string) (int, error)
	InsertLog(ctx context.Context, competitionID, userID int64, durationMinutes int, date string) (*models.CompetitionLog, error)
	LogParticipantIDs(ctx context.Context, competitionID int64) ([]int64, error)
	MatchingGoalUserIDs(ctx context.Context, title string) ([]int64, error)
	ListUsersByIDs(ctx context.Context, ids []int64) ([]models.User, error)
	ListManualEntries(ctx context.Context, competitionID, userID int64) ([]models.LedgerEntry, error)
	ListGoalEntries(ctx context.Context, userID int64, title string) ([]models.GoalEntry, error)
}

// Service computes derived competition state on top of a Store.
type Service struct {
	store Store
}

// NewService returns a Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// IsMember reports whether the user is a member of the competition: the
// creator always is, anyone else is a member once they have any ledger row,
// 0-minute join markers included.
func (s *Service) IsMember(ctx context.Context, comp *models.Competition, userID int64) (bool, error) {
	if comp.CreatorID == userID {
		return true, nil
	}
	return s.store.HasLogRows(ctx, comp.ID, userID)
}

// UserTotal returns the user's current total minutes in the competition and
// whether they are a member. Non-members always total zero.
func (s *Service) UserTotal(ctx context.Context, comp *models.Competition, userID int64) (total int, member bool, err error) {
	member, err = s.IsMember(ctx, comp, userID)
	if err != nil {
		return 0, false, err
	}
	if !member {
		return 0, false, nil
	}

	manual, err := s.store.SumLogs(ctx, comp.ID, userID)
	if err != nil {
		return 0, true, err
	}
	goal, err := s.store.SumMatchingGoalMinutes(ctx, userID, comp.Title)
	if err != nil {
		return 0, true, err
	}

	total = manual + goal
	if total < 0 {
		total = 0
	}
	return total, true, nil
}

// LogResult is the outcome of a LogTime call.
type LogResult struct {
	// Joined is true when a 0-minute request from a non-member turned into
	// a join instead of a log entry.
	Joined bool
	Log    *models.CompetitionLog
}

// LogTime appends time for a user to the competition ledger, dated date.
//
// A 0-minute request from a non-member joins the competition. Any other
// request from a non-member is rejected with ErrNotMember. Members may log
// any non-negative amount; repeated 0-minute entries from members are
// harmless membership markers.
func (s *Service) LogTime(ctx context.Context, comp *models.Competition, userID int64, minutes int, date string) (*LogResult, error) {
	member, err := s.IsMember(ctx, comp, userID)
	if err != nil {
		return nil, err
	}

	if !member {
		if minutes != 0 {
			return nil, ErrNotMember
		}
		log, err := s.store.InsertLog(ctx, comp.ID, userID, 0, date)
		if err != nil {
			return nil, err
		}
		return &LogResult{Joined: true, Log: log}, nil
	}

	log, err := s.store.InsertLog(ctx, comp.ID, userID, minutes, date)
	if err != nil {
		return nil, err
	}
	return &LogResult{Log: log}, nil
}

// RemoveTime validates and records a removal as a negative ledger row dated
// date. The amount must be positive and no larger than the user's current
// total; a too-large removal returns *RemovalError.
func (s *Service) RemoveTime(ctx context.Context, comp *models.Competition, userID int64, amount int, date string) (*models.CompetitionLog, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	total, member, err := s.UserTotal(ctx, comp, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}
	if amount > total {
		return nil, &RemovalError{Requested: amount, Available: total}
	}

	return s.store.InsertLog(ctx, comp.ID, userID, -amount, date)
}

// LeaderboardEntry is one user's row on a competition leaderboard. Rank is
// "-" for users who have not joined or whose total is zero.
type LeaderboardEntry struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	TotalMinutes int    `json:"total_minutes"`
	Rank         string `json:"rank"`
	IsMember     bool   `json:"is_member"`
	IsCreator    bool   `json:"is_creator"`
}

// Leaderboard builds the competition leaderboard. Participants are the
// creator, every user with a ledger row, and every user with a positive
// matching goal completion. Rows are ordered by total descending, ties
// broken by lowercased username ascending.
func (s *Service) Leaderboard(ctx context.Context, comp *models.Competition) ([]LeaderboardEntry, error) {
	ids := map[int64]struct{}{comp.CreatorID: {}}

	logUsers, err := s.store.LogParticipantIDs(ctx, comp.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range logUsers {
		ids[id] = struct{}{}
	}

	goalUsers, err := s.store.MatchingGoalUserIDs(ctx, comp.Title)
	if err != nil {
		return nil, err
	}
	for _, id := range goalUsers {
		ids[id] = struct{}{}
	}

	idList := make([]int64, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}
	users, err := s.store.ListUsersByIDs(ctx, idList)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		total, member, err := s.UserTotal(ctx, comp, u.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{
			UserID:       u.ID,
			Username:     u.Username,
			TotalMinutes: total,
			IsMember:     member,
			IsCreator:    u.ID == comp.CreatorID,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalMinutes != entries[j].TotalMinutes {
			return entries[i].TotalMinutes > entries[j].TotalMinutes
		}
		return strings.ToLower(entries[i].Username) < strings.ToLower(entries[j].Username)
	})

	for i := range entries {
		e := &entries[i]
		if !e.IsMember || e.TotalMinutes == 0 {
			e.Rank = "-"
			continue
		}
		above := 0
		for _, other := range entries {
			if other.TotalMinutes > e.TotalMinutes {
				above++
			}
		}
		e.Rank = fmt.Sprintf("%d", above+1)
	}

	return entries, nil
}

// Ledger returns the two sources behind a user's total: their positive
// manual log rows (with row IDs, so entries can be deleted) and their
// matching positive goal completions.
func (s *Service) Ledger(ctx context.Context, comp *models.Competition, userID int64) ([]models.LedgerEntry, []models.GoalEntry, error) {
	manual, err := s.store.ListManualEntries(ctx, comp.ID, userID)
	if err != nil {
		return nil, nil, err
	}
	goal, err := s.store.ListGoalEntries(ctx, userID, comp.Title)
	if err != nil {
		return nil, nil, err
	}
	return manual, goal, nil
}

// ParticipantTimeline merges a participant's positive manual log entries and
// matching goal completions into per-day totals, sorted by date ascending.
func (s *Service) ParticipantTimeline(ctx context.Context, comp *models.Competition, userID int64) ([]models.TimeEntry, error) {
	manual, err := s.store.ListManualEntries(ctx, comp.ID, userID)
	if err != nil {
		return nil, err
	}
	goal, err := s.store.ListGoalEntries(ctx, userID, comp.Title)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int)
	for _, e := range manual {
		byDate[e.Date] += e.Minutes
	}
	for _, e := range goal {
		byDate[e.Date] += e.Minutes
	}

	timeline := make([]models.TimeEntry, 0, len(byDate))
	for date, minutes := range byDate {
		timeline = append(timeline, models.TimeEntry{Date: date, Minutes: minutes})
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Date < timeline[j].Date })
	return timeline, nil
}
