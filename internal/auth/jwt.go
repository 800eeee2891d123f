// Goalpost - Social Goal Tracking and Competitions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalpost

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/goalpost/internal/logging"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies login tokens (HS256).
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer. If secret is empty, a random one is
// generated; tokens then stop verifying across restarts, which is fine for
// development but rejected by config validation in production.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("failed to generate token secret: %v", err))
		}
		secret = hex.EncodeToString(buf)
		logging.Warn().Msg("No JWT secret configured, generated an ephemeral one")
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Claims are the registered claims carried by login tokens. The subject is
// the user ID.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for the user.
func (t *TokenIssuer) Issue(userID int64, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			Issuer:    "goalpost",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the user ID and username.
func (t *TokenIssuer) Verify(tokenString string) (userID int64, username string, err error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer("goalpost"), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	userID, err = strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidToken
	}
	return userID, claims.Username, nil
}
