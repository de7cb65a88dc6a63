// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package gateway

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/campass/internal/auth"
	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/metrics"
)

// gatePolicy selects which checks the gate applies. Checks always run in
// the same order: share exists, secret provisioned, credential valid,
// sharing enabled and camera allowed.
type gatePolicy struct {
	page   bool // answer failures for a browser page
	secret bool
	cookie bool
	camera bool
}

var (
	gatePINPage    = gatePolicy{page: true}
	gateIssue      = gatePolicy{secret: true}
	gateViewerPage = gatePolicy{page: true, secret: true, cookie: true}
	gateAPI        = gatePolicy{secret: true, cookie: true}
	gateCamera     = gatePolicy{secret: true, cookie: true, camera: true}
)

// gate returns the access gate middleware for a policy. On success the
// request context carries the share, its secret and, for camera endpoints,
// the camera ID.
func (rt *Router) gate(p gatePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "slug")

			sh, ok := rt.registry.Resolve(slug)
			if !ok {
				rt.deny(w, p, http.StatusNotFound, metrics.DenyUnknownShare, msgShareNotFound)
				return
			}

			ctx := logging.ContextWithSlug(r.Context(), slug)
			r = r.WithContext(ctx)
			sc := &shareContext{share: sh}

			if p.secret {
				secret, ok := rt.secrets.Secret(slug)
				if !ok {
					logging.Ctx(ctx).Error().Msg("Share has no signing secret")
					rt.deny(w, p, http.StatusInternalServerError, metrics.DenyNotConfigured, msgNotConfigured)
					return
				}
				sc.secret = secret
			}

			if p.cookie && !rt.tokens.Verify(auth.TokenFromRequest(r, slug), slug, sc.secret) {
				if p.page {
					metrics.RecordAccessDenied(metrics.DenyUnauthorized)
					http.Redirect(w, r, rt.shareURL(slug), http.StatusFound)
					return
				}
				rt.deny(w, p, http.StatusUnauthorized, metrics.DenyUnauthorized, msgUnauthorized)
				return
			}

			if p.camera {
				if !rt.toggles.IsEnabled(slug) {
					rt.deny(w, p, http.StatusForbidden, metrics.DenySharingDisabled, msgSharingDisabled)
					return
				}
				cameraID, err := cameraParam(r)
				if err != nil || !sh.AllowsCamera(cameraID) {
					rt.deny(w, p, http.StatusForbidden, metrics.DenyCameraNotAllowed, msgCameraNotAllowed)
					return
				}
				sc.cameraID = cameraID
			}

			next.ServeHTTP(w, r.WithContext(withShareContext(ctx, sc)))
		})
	}
}

func (rt *Router) deny(w http.ResponseWriter, p gatePolicy, status int, reason, message string) {
	metrics.RecordAccessDenied(reason)
	if p.page {
		http.Error(w, message, status)
		return
	}
	respondError(w, status, message)
}

// cameraParam returns the decoded camera ID. chi matches against RawPath
// when the request has one, leaving the parameter escaped; otherwise the
// parameter is already decoded and must not be unescaped again.
func cameraParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "cameraID")
	if r.URL.RawPath == "" {
		return id, nil
	}
	return url.PathUnescape(id)
}
