// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package auth issues and checks the per-share viewer credentials: signing
// secrets, JWT session tokens, passcode comparison and the session cookie.
package auth

import (
	"net/http"
	"time"
)

const (
	// CookiePrefix is prepended to the share slug to name its session cookie.
	CookiePrefix = "campass_"

	// NeverMaxAge is the cookie lifetime used for credentials that never
	// expire (ten years).
	NeverMaxAge = 315360000
)

// CookieName returns the session cookie name for slug.
func CookieName(slug string) string {
	return CookiePrefix + slug
}

// SessionCookie builds the session cookie carrying token.
//
// The cookie is scoped to path (the share's URL namespace), is HttpOnly with
// SameSite=Lax, and lives as long as the credential; ttl <= 0 means never.
func SessionCookie(slug, token, path string, ttl time.Duration, secure bool) *http.Cookie {
	maxAge := NeverMaxAge
	if ttl > 0 {
		maxAge = int(ttl / time.Second)
	}

	return &http.Cookie{
		Name:     CookieName(slug),
		Value:    token,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest returns the session token the request carries for slug,
// or the empty string.
func TokenFromRequest(r *http.Request, slug string) string {
	c, err := r.Cookie(CookieName(slug))
	if err != nil {
		return ""
	}
	return c.Value
}
