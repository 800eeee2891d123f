// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

import (
	"fmt"
	"time"

	"github.com/tomtom215/goalpost/internal/models"
)

const dateLayout = "2006-01-02"

// goalDateRange derives a goal's inclusive date range from its type and a
// reference date.
//
//	daily, one-time: the reference date itself
//	weekly:          Monday through Sunday of the reference week
//	monthly:         first through last day of the reference month
func goalDateRange(goalType, refDate string) (start, end string, err error) {
	t, err := time.Parse(dateLayout, refDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid date %q", refDate)
	}

	switch goalType {
	case models.GoalTypeDaily, models.GoalTypeOneTime:
		return refDate, refDate, nil

	case models.GoalTypeWeekly:
		// Weeks run Monday through Sunday; a Sunday reference belongs to
		// the week that started the previous Monday.
		offset := (int(t.Weekday()) + 6) % 7
		monday := t.AddDate(0, 0, -offset)
		return monday.Format(dateLayout), monday.AddDate(0, 0, 6).Format(dateLayout), nil

	case models.GoalTypeMonthly:
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return first.Format(dateLayout), last.Format(dateLayout), nil

	default:
		return "", "", fmt.Errorf("invalid goal type %q", goalType)
	}
}
