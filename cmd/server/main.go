// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

// Command server runs the Goalpost HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/goalpost/internal/api"
	"github.com/tomtom215/goalpost/internal/auth"
	"github.com/tomtom215/goalpost/internal/config"
	"github.com/tomtom215/goalpost/internal/database"
	"github.com/tomtom215/goalpost/internal/logging"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.New(ctx, database.Options{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	tokens := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	handler := api.NewHandler(store, tokens, cfg)
	router := api.NewRouter(handler, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.Server.Environment).
			Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
