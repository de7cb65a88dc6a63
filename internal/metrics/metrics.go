// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package metrics defines the Prometheus collectors exported on /_/metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for AuthAttempts.
const (
	AuthSuccess = "success"
	AuthFailure = "failure"
	AuthInvalid = "invalid_request"
)

// Label values for AccessDenied.
const (
	DenyUnknownShare     = "unknown_share"
	DenyNotConfigured    = "not_configured"
	DenyUnauthorized     = "unauthorized"
	DenySharingDisabled  = "sharing_disabled"
	DenyCameraNotAllowed = "camera_not_allowed"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campass_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campass_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds (streams count until the client leaves)",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600, 3600},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campass_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Access Gate Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campass_auth_attempts_total",
			Help: "Passcode submissions by result",
		},
		[]string{"result"},
	)

	AccessDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campass_access_denied_total",
			Help: "Requests rejected by the access gate by reason",
		},
		[]string{"reason"},
	)

	ShareEnabled = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "campass_share_enabled",
			Help: "Whether sharing is currently enabled (1) or disabled (0) per share",
		},
		[]string{"slug"},
	)

	// Delivery Metrics
	EventStreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campass_event_streams_active",
			Help: "Current number of open status event streams",
		},
	)

	FrameStreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campass_frame_streams_active",
			Help: "Current number of open proxied frame streams",
		},
	)

	FramesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campass_frames_sent_total",
			Help: "Frames written to proxied streams by source mode",
		},
		[]string{"mode"}, // "native", "poll"
	)

	StreamNegotiations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campass_stream_negotiations_total",
			Help: "Delivery descriptors handed out by type",
		},
		[]string{"type"}, // "adaptive", "proxy"
	)

	CameraUpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campass_camera_upstream_errors_total",
			Help: "Failed requests to camera upstreams by operation",
		},
		[]string{"operation"}, // "still", "frames", "adaptive"
	)
)

// RecordAPIRequest records an HTTP request metric
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight HTTP requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuthAttempt counts a passcode submission.
func RecordAuthAttempt(result string) {
	AuthAttempts.WithLabelValues(result).Inc()
}

// RecordAccessDenied counts a gate rejection.
func RecordAccessDenied(reason string) {
	AccessDenied.WithLabelValues(reason).Inc()
}

// SetShareEnabled mirrors a share's toggle state.
func SetShareEnabled(slug string, enabled bool) {
	v := 0.0
	if enabled {
		v = 1
	}
	ShareEnabled.WithLabelValues(slug).Set(v)
}

// RecordFrame counts one frame written to a proxied stream.
func RecordFrame(mode string) {
	FramesSent.WithLabelValues(mode).Inc()
}

// RecordNegotiation counts a delivery descriptor.
func RecordNegotiation(kind string) {
	StreamNegotiations.WithLabelValues(kind).Inc()
}

// RecordUpstreamError counts a failed camera upstream call.
func RecordUpstreamError(operation string) {
	CameraUpstreamErrors.WithLabelValues(operation).Inc()
}
