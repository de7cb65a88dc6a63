// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package gateway

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/share"
)

type healthResponse struct {
	Status string `json:"status"`
	Shares int    `json:"shares"`
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Shares: rt.registry.Len()})
}

// requireAdmin checks the bearer token against the configured admin token.
func (rt *Router) requireAdmin(next http.Handler) http.Handler {
	expected := []byte(rt.opts.AdminToken)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="campass"`)
			respondError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type adminShare struct {
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Enabled  bool     `json:"enabled"`
	AuthKind string   `json:"auth_kind"`
	Session  string   `json:"session_duration"`
	Cameras  []string `json:"cameras"`
	URL      string   `json:"url"`
}

func (rt *Router) listShares(w http.ResponseWriter, r *http.Request) {
	shares := rt.registry.List()
	out := make([]adminShare, 0, len(shares))
	for i := range shares {
		s := &shares[i]
		out = append(out, adminShare{
			Slug:     s.Slug,
			Name:     s.Name,
			Enabled:  rt.toggles.IsEnabled(s.Slug),
			AuthKind: string(s.AuthKind),
			Session:  string(s.SessionDuration),
			Cameras:  s.Cameras,
			URL:      rt.shareURL(s.Slug),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

type toggleResponse struct {
	Slug    string `json:"slug"`
	Enabled bool   `json:"enabled"`
	Changed bool   `json:"changed"`
}

// setShareEnabled turns a share on or off. Connected viewers are notified
// through their event streams.
func (rt *Router) setShareEnabled(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req toggleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBody)).Decode(&req); err != nil || req.Enabled == nil {
		respondError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	changed, err := rt.toggles.Set(slug, *req.Enabled)
	switch {
	case errors.Is(err, share.ErrUnknownShare):
		respondError(w, http.StatusNotFound, msgShareNotFound)
		return
	case err != nil && !changed:
		logging.Ctx(r.Context()).Error().Err(err).Str("slug", slug).Msg("Failed to change share toggle")
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	case err != nil:
		// The toggle flipped but some viewers may not hear about it until
		// they reconnect.
		logging.Ctx(r.Context()).Warn().Err(err).Str("slug", slug).Msg("Share toggle changed without notification")
	}

	respondJSON(w, http.StatusOK, toggleResponse{Slug: slug, Enabled: *req.Enabled, Changed: changed})
}
