// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

// Request bodies. Field validation runs through internal/validation; cross
// field rules (membership, ownership, ceilings) live in the handlers and the
// competition service.

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type loginRequest struct {
	// Login accepts a username or an email address.
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createGoalRequest struct {
	UserID          int64  `json:"userId" validate:"required,gt=0"`
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=2000"`
	DurationMinutes *int   `json:"durationMinutes" validate:"omitempty,gte=0,lte=1440"`
	Type            string `json:"type" validate:"required,oneof=daily weekly monthly one-time"`
	StartDate       string `json:"startDate" validate:"omitempty,dateonly"`
}

type updateGoalRequest struct {
	UserID          int64  `json:"userId" validate:"required,gt=0"`
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=2000"`
	DurationMinutes *int   `json:"durationMinutes" validate:"omitempty,gte=0,lte=1440"`
	Type            string `json:"type" validate:"required,oneof=daily weekly monthly one-time"`
	StartDate       string `json:"startDate" validate:"omitempty,dateonly"`
}

type completeGoalRequest struct {
	UserID          int64  `json:"userId" validate:"required,gt=0"`
	Date            string `json:"date" validate:"omitempty,dateonly"`
	DurationMinutes int    `json:"durationMinutes" validate:"gte=0,lte=1440"`
}

type createCompetitionRequest struct {
	UserID      int64  `json:"userId" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type updateCompetitionRequest struct {
	UserID      int64  `json:"userId" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type logTimeRequest struct {
	UserID          int64  `json:"userId" validate:"required,gt=0"`
	CompetitionID   int64  `json:"competitionId" validate:"required,gt=0"`
	DurationMinutes int    `json:"durationMinutes" validate:"gte=0,lte=1440"`
	Date            string `json:"date" validate:"omitempty,dateonly"`
}

type removeTimeRequest struct {
	UserID        int64 `json:"userId" validate:"required,gt=0"`
	CompetitionID int64 `json:"competitionId" validate:"required,gt=0"`
	// Amount is validated as positive by the remove validator so the
	// error message stays consistent with the domain rules.
	Amount int `json:"amount"`
}

type leaveCompetitionRequest struct {
	UserID        int64 `json:"userId" validate:"required,gt=0"`
	CompetitionID int64 `json:"competitionId" validate:"required,gt=0"`
}

type inviteRequest struct {
	CompetitionID int64  `json:"competitionId" validate:"required,gt=0"`
	InviterID     int64  `json:"inviterId" validate:"required,gt=0"`
	Username      string `json:"username" validate:"required"`
}

type respondRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type friendRequestRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	Username string `json:"username" validate:"required"`
}
