// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package gateway

import (
	"net"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campass/internal/logging"
)

// Client-facing error messages. They never say more than which check failed.
const (
	msgShareNotFound    = "Share not found"
	msgNotConfigured    = "Not configured"
	msgUnauthorized     = "Unauthorized"
	msgSharingDisabled  = "Sharing is disabled"
	msgCameraNotAllowed = "Camera not allowed"
	msgInvalidRequest   = "Invalid request"
	msgInvalidPasscode  = "Invalid passcode"
	msgTooManyAttempts  = "Too many attempts"
	msgInternal         = "Internal error"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes v as a JSON response. API responses are never cached.
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// clientIP is the request's remote address without the port. Behind a
// trusted proxy chi's RealIP has already replaced it.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
