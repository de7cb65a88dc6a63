// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when a credential is requested without a signing secret.
var ErrEmptySecret = errors.New("signing secret is empty")

// Claims are the contents of a session credential: the share slug it is
// bound to and, unless the share's credentials never expire, an exp claim.
type Claims struct {
	Slug string `json:"slug"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies share-scoped session credentials.
//
// Credentials are HS256 JWTs signed with the share's own secret, so a
// credential for one share can never verify against another, and
// discarding a share's secret invalidates everything it issued.
type TokenService struct {
	now func() time.Time
}

// NewTokenService creates a token service on the wall clock.
func NewTokenService() *TokenService {
	return &TokenService{now: time.Now}
}

// NewTokenServiceWithClock creates a token service with an injected clock.
func NewTokenServiceWithClock(now func() time.Time) *TokenService {
	return &TokenService{now: now}
}

// Issue creates a credential for slug signed with secret.
//
// A ttl of zero or less produces a credential without an expiry. Expiry is
// carried as a JWT NumericDate, so it has one-second granularity.
func (s *TokenService) Issue(slug string, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	claims := &Claims{Slug: slug}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(s.now().Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify reports whether token is a valid credential for slug under secret.
//
// It never returns an error: a tampered or malformed token, a token for a
// different slug, a token signed with another algorithm, and a token at or
// past its expiry all simply fail.
func (s *TokenService) Verify(token, slug string, secret []byte) bool {
	if token == "" || len(secret) == 0 {
		return false
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return false
	}

	return claims.Slug == slug
}
