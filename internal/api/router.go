// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/goalpost/internal/config"
	"github.com/tomtom215/goalpost/internal/middleware"
)

// Router builds the HTTP handler tree.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter creates a Router around the given handler set.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// rateLimit returns an httprate middleware for the given budget, or a no-op
// when rate limiting is disabled in config.
func (rt *Router) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if rt.cfg.Security.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(requests, window)
}

// Setup configures all routes.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	r.Use(middleware.SecurityHeaders)

	// Health gets a permissive budget for monitoring.
	r.With(rt.rateLimit(1000, time.Minute)).Get("/api/health", rt.handler.Health)

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	// Auth endpoints get a strict budget against brute force.
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimit(10, time.Minute))
			r.Use(middleware.PrometheusMetrics)
			r.Post("/register", rt.handler.Register)
			r.Post("/login", rt.handler.Login)
		})

		// Everything else shares the standard budget.
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimit(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
			r.Use(middleware.PrometheusMetrics)

			r.Get("/users", rt.handler.ListUsers)
			r.Get("/users/{profileUserID}/summary", rt.handler.UserSummary)

			r.Post("/goals", rt.handler.CreateGoal)
			r.Get("/goals/{userID}", rt.handler.ListGoals)
			r.Put("/goals/{goalID}", rt.handler.UpdateGoal)
			r.Delete("/goals/{goalID}", rt.handler.DeleteGoal)
			r.Post("/goals/{goalID}/complete", rt.handler.CompleteGoal)
			r.Get("/goals/{goalID}/completions", rt.handler.ListCompletions)

			r.Get("/progress/{userID}", rt.handler.Progress)
			r.Get("/leaderboard", rt.handler.Leaderboard)

			r.Get("/friends", rt.handler.ListFriends)
			r.Get("/friends/requests", rt.handler.ListFriendRequests)
			r.Post("/friends/request", rt.handler.CreateFriendRequest)
			r.Post("/friends/requests/{requestID}/accept", rt.handler.AcceptFriendRequest)
			r.Post("/friends/requests/{requestID}/decline", rt.handler.DeclineFriendRequest)
			r.Delete("/friends/{friendID}", rt.handler.RemoveFriend)

			r.Get("/competitions", rt.handler.ListCompetitions)
			r.Post("/competition", rt.handler.CreateCompetition)
			r.Get("/competition/{competitionID}", rt.handler.GetCompetition)
			r.Post("/competition/{competitionID}/update", rt.handler.UpdateCompetition)
			r.Delete("/competition/{competitionID}", rt.handler.DeleteCompetition)
			r.Post("/competition/log", rt.handler.LogTime)
			r.Post("/competition/remove", rt.handler.RemoveTime)
			r.Post("/competition/leave", rt.handler.LeaveCompetition)
			r.Delete("/competition/log/{logID}", rt.handler.DeleteLog)
			r.Delete("/competition/goal-completion/{goalID}/{date}", rt.handler.DeleteGoalCompletion)
			r.Get("/competition/{competitionID}/participant/{userID}", rt.handler.Participant)
			r.Post("/competition/invite", rt.handler.Invite)
			r.Get("/competition/invitations", rt.handler.ListInvitations)
			r.Post("/competition/invitations/{inviteID}/accept", rt.handler.AcceptInvitation)
			r.Post("/competition/invitations/{inviteID}/decline", rt.handler.DeclineInvitation)
		})
	})

	return r
}
