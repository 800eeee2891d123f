// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

// Package models defines the domain entities and API payload shapes shared
// between the database and api packages.
//
// Dates are represented as YYYY-MM-DD strings throughout; the service never
// does timezone arithmetic on stored dates, only on "today".
package models

import "time"

// Goal types. A goal's date range is derived from its type and start date.
const (
	GoalTypeDaily   = "daily"
	GoalTypeWeekly  = "weekly"
	GoalTypeMonthly = "monthly"
	GoalTypeOneTime = "one-time"
)

// Invitation and friend request statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// User is a registered account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Goal is a user-owned recurring or one-time target with an optional time
// budget in minutes.
type Goal struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes *int      `json:"duration_minutes"`
	Type            string    `json:"type"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// GoalCompletion records that a goal was performed on a date. At most one row
// exists per (goal, date); logging again replaces the duration.
// DurationMinutes may be 0, meaning "done, no time logged".
type GoalCompletion struct {
	ID              int64     `json:"id"`
	GoalID          int64     `json:"goal_id"`
	CompletionDate  string    `json:"completion_date"`
	DurationMinutes int       `json:"duration_minutes"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Competition is a named pool that aggregates time across members. Its title
// is the join key to goals: a goal whose trimmed, lowercased title equals the
// competition's contributes its positive completions to the owner's total.
type Competition struct {
	ID          int64     `json:"id"`
	CreatorID   int64     `json:"creator_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// CreatorName is populated by list and detail queries.
	CreatorName string `json:"creator_name,omitempty"`
}

// CompetitionLog is one entry in a competition's append-only signed ledger.
// Positive durations add time, negative durations are removals, and a
// 0-minute row marks membership ("joined").
type CompetitionLog struct {
	ID              int64     `json:"id"`
	CompetitionID   int64     `json:"competition_id"`
	UserID          int64     `json:"user_id"`
	DurationMinutes int       `json:"duration_minutes"`
	LoggedDate      string    `json:"logged_date"`
	LoggedAt        time.Time `json:"logged_at"`
}

// CompetitionInvitation invites a user into a competition. Acceptance inserts
// a 0-minute log row, which is what actually grants membership.
type CompetitionInvitation struct {
	ID              int64     `json:"id"`
	CompetitionID   int64     `json:"competition_id"`
	InviterID       int64     `json:"inviter_id"`
	InviteeUsername string    `json:"invitee_username"`
	InviteeID       int64     `json:"invitee_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined display fields, populated by list queries.
	CompetitionTitle       string `json:"competition_title,omitempty"`
	CompetitionDescription string `json:"competition_description,omitempty"`
	InviterUsername        string `json:"inviter_username,omitempty"`
}

// FriendRequest is a pending/accepted/declined request between two users.
type FriendRequest struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	AddresseeID int64     `json:"addressee_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	RequesterUsername string `json:"requester_username,omitempty"`
}

// TimeEntry is a dated amount of minutes, used when merging a participant's
// manual competition logs with their matching goal completions.
type TimeEntry struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// LedgerEntry is one of a user's positive manual log rows in a competition.
// The ID is the log row ID, so the owner can delete the entry.
type LedgerEntry struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// GoalEntry is one positive goal completion contributing to a user's
// competition total through title matching.
type GoalEntry struct {
	GoalID  int64  `json:"goal_id"`
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// GoalProgress is a per-goal completion summary over a date window.
type GoalProgress struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Type             string `json:"type"`
	DurationMinutes  *int   `json:"duration_minutes"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	CompletedMinutes int    `json:"completed_minutes"`
	CompletionCount  int    `json:"completion_count"`
}

// LeaderboardRow is one user's entry in the global goals leaderboard.
type LeaderboardRow struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	GoalsCompleted int    `json:"goals_completed"`
	TotalMinutes   int    `json:"total_minutes"`
}
