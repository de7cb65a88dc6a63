// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/campass/internal/middleware"
)

// Handler builds the chi router.
//
// Share routes are registered individually rather than through a mounted
// sub-router, because a mount cannot tell /{slug} from /{slug}/.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	if rt.opts.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders(rt.opts.TrustProxy))

	if rt.opts.BasePath != "" {
		r.Route(rt.opts.BasePath, rt.routes)
	} else {
		rt.routes(r)
	}

	return r
}

func (rt *Router) routes(r chi.Router) {
	// "_" is never a valid slug, so the operational surface cannot collide
	// with a share.
	r.Route("/_", func(r chi.Router) {
		r.Get("/health", rt.health)
		r.Handle("/metrics", promhttp.Handler())

		if rt.opts.AdminToken != "" {
			r.Route("/admin", func(r chi.Router) {
				r.Use(rt.requireAdmin)
				r.Get("/shares", rt.listShares)
				r.Put("/shares/{slug}/enabled", rt.setShareEnabled)
			})
		}
	})

	r.Get("/{slug}", rt.redirectToPIN)
	r.With(rt.gate(gatePINPage)).Get("/{slug}/", rt.pinPage)
	r.With(rt.gate(gateViewerPage)).Get("/{slug}/viewer", rt.viewerPage)

	r.With(rt.authLimiter(), rt.gate(gateIssue)).Post("/{slug}/api/auth", rt.authenticate)

	r.Group(func(r chi.Router) {
		r.Use(rt.gate(gateAPI))
		r.Get("/{slug}/api/status", rt.status)
		r.Get("/{slug}/api/events", rt.events)
	})

	r.Group(func(r chi.Router) {
		r.Use(rt.gate(gateCamera))
		r.Get("/{slug}/api/stream-info/{cameraID}", rt.streamInfo)
		r.Get("/{slug}/api/stream/{cameraID}", rt.stream)
	})
}

// authLimiter bounds passcode attempts per client IP across all shares.
func (rt *Router) authLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(
		rt.opts.AuthRateLimit,
		rt.opts.AuthRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, msgTooManyAttempts)
		}),
	)
}
