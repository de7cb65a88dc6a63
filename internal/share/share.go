// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package share holds the share model, the registry that resolves slugs to
// shares, and the per-share enable toggles with their change notifications.
package share

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/campass/internal/validation"
)

var (
	// ErrInvalidShare is returned when a share definition fails validation.
	ErrInvalidShare = errors.New("invalid share")

	// ErrDuplicateSlug is returned when two shares claim the same slug.
	ErrDuplicateSlug = errors.New("duplicate share slug")

	// ErrUnknownShare is returned by toggle operations on a slug that has no share.
	ErrUnknownShare = errors.New("unknown share")
)

// AuthKind determines the accepted passcode format.
type AuthKind string

// Supported passcode formats.
const (
	AuthPIN4         AuthKind = "pin4"
	AuthPIN6         AuthKind = "pin6"
	AuthAlphanumeric AuthKind = "alphanumeric"
)

// SessionDuration is the lifetime key for credentials issued by a share.
type SessionDuration string

// Supported session durations.
const (
	Session1Hour   SessionDuration = "1h"
	Session24Hours SessionDuration = "24h"
	Session7Days   SessionDuration = "7d"
	Session30Days  SessionDuration = "30d"
	Session1Year   SessionDuration = "1y"
	SessionNever   SessionDuration = "never"

	// DefaultSessionDuration applies when a share does not set one.
	DefaultSessionDuration = Session24Hours
)

var sessionTTLs = map[SessionDuration]time.Duration{
	Session1Hour:   time.Hour,
	Session24Hours: 24 * time.Hour,
	Session7Days:   7 * 24 * time.Hour,
	Session30Days:  30 * 24 * time.Hour,
	Session1Year:   365 * 24 * time.Hour,
	SessionNever:   0,
}

// TTL returns the credential lifetime. Zero means the credential never
// expires. Unknown keys fall back to the default duration.
func (d SessionDuration) TTL() time.Duration {
	if ttl, ok := sessionTTLs[d]; ok {
		return ttl
	}
	return sessionTTLs[DefaultSessionDuration]
}

// Never reports whether credentials for this duration never expire.
func (d SessionDuration) Never() bool {
	return d == SessionNever
}

// Share is a named, passcode-protected grant of viewing rights over a fixed
// set of cameras.
type Share struct {
	Slug            string          `validate:"required,slug"`
	Name            string          `validate:"required"`
	AuthKind        AuthKind        `validate:"oneof=pin4 pin6 alphanumeric"`
	Passcode        string          `validate:"passcode=AuthKind"`
	Cameras         []string        `validate:"min=1,unique,dive,required"`
	SessionDuration SessionDuration `validate:"oneof=1h 24h 7d 30d 1y never"`

	// Enabled is the toggle state the share starts with.
	Enabled bool
}

// Validate checks the share definition.
func (s *Share) Validate() error {
	if err := validation.ValidateStruct(s); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidShare, s.Slug, err)
	}
	return nil
}

// AllowsCamera reports whether cameraID is in the share's camera list.
func (s *Share) AllowsCamera(cameraID string) bool {
	for _, id := range s.Cameras {
		if id == cameraID {
			return true
		}
	}
	return false
}
