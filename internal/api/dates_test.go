// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalDateRange(t *testing.T) {
	tests := []struct {
		name      string
		goalType  string
		refDate   string
		wantStart string
		wantEnd   string
	}{
		{"daily", "daily", "2026-09-01", "2026-09-01", "2026-09-01"},
		{"one-time", "one-time", "2026-09-15", "2026-09-15", "2026-09-15"},
		{"weekly from wednesday", "weekly", "2026-09-02", "2026-08-31", "2026-09-06"},
		{"weekly from monday", "weekly", "2026-08-31", "2026-08-31", "2026-09-06"},
		// Sunday belongs to the week that started the previous Monday.
		{"weekly from sunday", "weekly", "2026-09-06", "2026-08-31", "2026-09-06"},
		{"monthly", "monthly", "2026-09-15", "2026-09-01", "2026-09-30"},
		{"monthly february leap", "monthly", "2028-02-10", "2028-02-01", "2028-02-29"},
		{"monthly december", "monthly", "2026-12-31", "2026-12-01", "2026-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := goalDateRange(tt.goalType, tt.refDate)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestGoalDateRangeErrors(t *testing.T) {
	_, _, err := goalDateRange("daily", "not-a-date")
	assert.Error(t, err)

	_, _, err = goalDateRange("hourly", "2026-09-01")
	assert.Error(t, err)
}
