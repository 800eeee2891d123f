// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

// Package config provides layered configuration loading via Koanf v2.
//
// Sources are merged in order of increasing priority:
//  1. Built-in defaults
//  2. YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables with the GOALPOST_ prefix
//     (GOALPOST_SERVER_PORT, GOALPOST_DATABASE_PATH, ...)
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	// Timeout applies to both read and write on the HTTP server.
	Timeout time.Duration `koanf:"timeout"`
	// Environment is "development" or "production"; production requires a JWT secret.
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path is the SQLite database file, or ":memory:" for tests.
	Path string `koanf:"path"`
	// BusyTimeout is passed to PRAGMA busy_timeout, in milliseconds.
	BusyTimeout int `koanf:"busy_timeout"`
}

// SecurityConfig holds authentication and transport protection settings.
type SecurityConfig struct {
	// JWTSecret signs login tokens (HS256). Minimum 32 characters in production.
	JWTSecret string `koanf:"jwt_secret"`
	// TokenTTL is the lifetime of issued login tokens.
	TokenTTL time.Duration `koanf:"token_ttl"`
	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:        "/data/goalpost.db",
			BusyTimeout: 5000,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			TokenTTL:          24 * time.Hour,
			BcryptCost:        10,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for invalid or insecure combinations.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost must be between 4 and 31, got %d", c.Security.BcryptCost)
	}
	if c.Server.Environment == "production" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters in production")
	}
	return nil
}
