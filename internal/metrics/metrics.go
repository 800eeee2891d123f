// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

// Package metrics provides Prometheus instrumentation for the API and the
// domain: request throughput and latency, database health, and counters for
// the goal and competition operations that matter operationally.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Domain Metrics
	GoalCompletionsLogged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goal_completions_logged_total",
			Help: "Total number of goal completions recorded",
		},
	)

	CompetitionTimeLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "competition_time_logged_total",
			Help: "Total number of competition ledger entries",
		},
		[]string{"kind"}, // "log", "join", "remove"
	)

	CompetitionJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "competition_joins_total",
			Help: "Total number of competition joins",
		},
	)

	// Auth Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"operation", "outcome"}, // operation: "register", "login"
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuthAttempt records a register or login attempt outcome.
func RecordAuthAttempt(operation string, success bool) {
	AuthAttempts.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}
