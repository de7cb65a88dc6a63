// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

/*
Package middleware provides the HTTP middleware shared by every route.

Key Components:

  - RequestID: request tracking, propagated into the logging context
  - PrometheusMetrics: request count, latency and in-flight instrumentation
  - RequestLogger: one debug line per completed request
  - SecurityHeaders: nosniff, frame and referrer policy, HSTS over TLS

All wrappers around http.ResponseWriter implement Flush and Unwrap so the
long-lived event and frame streams keep working behind them.

Typical stack, outermost first:

	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders(trustProxy))
*/
package middleware
