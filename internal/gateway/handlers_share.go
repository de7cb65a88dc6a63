// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package gateway

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campass/internal/auth"
	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/metrics"
	"github.com/tomtom215/campass/internal/middleware"
	"github.com/tomtom215/campass/internal/stream"
)

// maxAuthBody bounds the passcode request body.
const maxAuthBody = 4 << 10

// authRequest is the passcode submission. Older clients send "pin".
type authRequest struct {
	Passcode *string `json:"passcode"`
	PIN      *string `json:"pin"`
}

func (a *authRequest) submitted() string {
	switch {
	case a.Passcode != nil:
		return *a.Passcode
	case a.PIN != nil:
		return *a.PIN
	default:
		return ""
	}
}

type authResponse struct {
	Success bool `json:"success"`
}

// authenticate exchanges a correct passcode for a session cookie.
func (rt *Router) authenticate(w http.ResponseWriter, r *http.Request) {
	sc := shareFrom(r.Context())
	log := logging.Ctx(r.Context())
	ip := clientIP(r)

	var req authRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBody)).Decode(&req); err != nil {
		metrics.RecordAuthAttempt(metrics.AuthInvalid)
		respondError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if !auth.CheckPasscode(sc.share.Passcode, req.submitted()) {
		metrics.RecordAuthAttempt(metrics.AuthFailure)
		rt.access.LogAuthFailure(sc.share.Slug, sc.share.Name, ip, r.UserAgent())
		respondError(w, http.StatusUnauthorized, msgInvalidPasscode)
		return
	}

	ttl := sc.share.SessionDuration.TTL()
	token, err := rt.tokens.Issue(sc.share.Slug, sc.secret, ttl)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue session credential")
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	secure := middleware.IsSecure(r, rt.opts.TrustProxy)
	http.SetCookie(w, auth.SessionCookie(sc.share.Slug, token, rt.cookiePath(sc.share.Slug), ttl, secure))

	metrics.RecordAuthAttempt(metrics.AuthSuccess)
	rt.access.LogAuthSuccess(sc.share.Slug, sc.share.Name, ip, r.UserAgent())
	respondJSON(w, http.StatusOK, authResponse{Success: true})
}

func (rt *Router) status(w http.ResponseWriter, r *http.Request) {
	sc := shareFrom(r.Context())
	respondJSON(w, http.StatusOK, rt.notifier.Status(&sc.share))
}

// events streams availability until the viewer leaves or the server stops.
func (rt *Router) events(w http.ResponseWriter, r *http.Request) {
	sc := shareFrom(r.Context())
	if err := rt.notifier.Stream(r.Context(), w, sc.share.Slug); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to open event stream")
		respondError(w, http.StatusInternalServerError, msgInternal)
	}
}

func (rt *Router) streamInfo(w http.ResponseWriter, r *http.Request) {
	sc := shareFrom(r.Context())

	desc := rt.negotiator.Negotiate(r.Context(), sc.share.Slug, sc.cameraID)
	// Proxied views are recorded when the frame stream opens.
	if desc.Type == stream.TypeAdaptive {
		rt.access.LogCameraView(sc.share.Slug, sc.share.Name, sc.cameraID, desc.Type, clientIP(r))
	}
	respondJSON(w, http.StatusOK, desc)
}

// stream relays frames. Once the multipart response has started, failures
// can only end it; they are logged, not reported.
func (rt *Router) stream(w http.ResponseWriter, r *http.Request) {
	sc := shareFrom(r.Context())
	rt.access.LogCameraView(sc.share.Slug, sc.share.Name, sc.cameraID, stream.TypeProxy, clientIP(r))

	if err := rt.proxy.Serve(r.Context(), w, sc.cameraID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("camera", sc.cameraID).Msg("Frame stream ended by camera failure")
	}
}
