// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	slugKey      contextKey = "slug"
)

// GenerateRequestID creates a new unique request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID returns a new context with the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithSlug tags the context with the share slug being served so every
// log line for a share-scoped request carries it.
func ContextWithSlug(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, slugKey, slug)
}

// SlugFromContext retrieves the share slug from context.
func SlugFromContext(ctx context.Context) string {
	if slug, ok := ctx.Value(slugKey).(string); ok {
		return slug
	}
	return ""
}

// Ctx returns the global logger with request_id and slug fields from ctx added.
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Still fetch failed")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}
	if slug := SlugFromContext(ctx); slug != "" {
		logCtx = logCtx.Str("slug", slug)
	}

	logger := logCtx.Logger()
	return &logger
}
