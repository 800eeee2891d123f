// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package competition

import (
	"context"
	"errors"

	"github.com/tomtom215/goalpost/internal/database"
	"github.com/tomtom215/goalpost/internal/logging"
	"github.com/tomtom215/goalpost/internal/models"
)

// SyncStore extends Store with the queries deletion sync needs. It is a
// separate interface because sync is optional: a Service built on a plain
// Store still serves totals and leaderboards.
type SyncStore interface {
	Store
	GetCompetition(ctx context.Context, id int64) (*models.Competition, error)
	FindLatestCompetitionByTitle(ctx context.Context, title string) (*models.Competition, error)
	DeleteMostRecentMatchingCompletion(ctx context.Context, userID int64, title, date string, durationMinutes int) (bool, error)
	DeleteMostRecentMatchingLog(ctx context.Context, competitionID, userID int64, date string, durationMinutes int) (bool, error)
}

// Syncer mirrors deletions between the two time sources. All operations are
// best effort: a failed or impossible sync never fails the primary deletion,
// it is only logged.
type Syncer struct {
	store SyncStore
}

// NewSyncer returns a Syncer backed by the given store.
func NewSyncer(store SyncStore) *Syncer {
	return &Syncer{store: store}
}

// AfterLogDelete runs after a manual competition log row was deleted. If the
// deleted row was positive, at most one of the user's goal completions that
// mirrors it (same date, same duration, goal title matching the competition
// title) is deleted too.
func (s *Syncer) AfterLogDelete(ctx context.Context, deleted *models.CompetitionLog) {
	if deleted.DurationMinutes <= 0 {
		return
	}

	comp, err := s.store.GetCompetition(ctx, deleted.CompetitionID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Int64("competition_id", deleted.CompetitionID).
			Msg("Deletion sync skipped, competition lookup failed")
		return
	}

	removed, err := s.store.DeleteMostRecentMatchingCompletion(ctx,
		deleted.UserID, comp.Title, deleted.LoggedDate, deleted.DurationMinutes)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Int64("competition_id", comp.ID).
			Int64("user_id", deleted.UserID).
			Msg("Deletion sync to goal completion failed")
		return
	}
	if removed {
		logging.Ctx(ctx).Debug().
			Int64("competition_id", comp.ID).
			Int64("user_id", deleted.UserID).
			Str("date", deleted.LoggedDate).
			Msg("Synced log deletion to goal completion")
	}
}

// AfterCompletionDelete runs after a goal completion was deleted. If the
// completion was positive and a competition with a matching title exists,
// at most one mirroring manual log row in the most recently created such
// competition is deleted too.
func (s *Syncer) AfterCompletionDelete(ctx context.Context, userID int64, goalTitle, date string, durationMinutes int) {
	if durationMinutes <= 0 {
		return
	}

	comp, err := s.store.FindLatestCompetitionByTitle(ctx, goalTitle)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			logging.Ctx(ctx).Warn().Err(err).
				Str("title", goalTitle).
				Msg("Deletion sync skipped, competition lookup failed")
		}
		return
	}

	removed, err := s.store.DeleteMostRecentMatchingLog(ctx, comp.ID, userID, date, durationMinutes)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Int64("competition_id", comp.ID).
			Int64("user_id", userID).
			Msg("Deletion sync to competition log failed")
		return
	}
	if removed {
		logging.Ctx(ctx).Debug().
			Int64("competition_id", comp.ID).
			Int64("user_id", userID).
			Str("date", date).
			Msg("Synced completion deletion to competition log")
	}
}
