// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package logging

import (
	"github.com/rs/zerolog"
)

// Access event types.
const (
	EventAuthSuccess = "auth_success"
	EventAuthFailure = "auth_failure"
	EventCameraView  = "camera_view"
)

// accessEvent is an audit record of a viewer interacting with a share.
type accessEvent struct {
	// Event is one of EventAuthSuccess, EventAuthFailure, EventCameraView.
	Event string
	// Slug identifies the share.
	Slug string
	// ShareName is the display name of the share.
	ShareName string
	// CameraID is set for camera_view events.
	CameraID string
	// IPAddress is the client's IP address as resolved by the RealIP middleware.
	IPAddress string
	// UserAgent is the client's user agent (truncated).
	UserAgent string
	// Mode is the delivery mode for camera_view events (adaptive or proxy).
	Mode string
}

// AccessLogger records viewer access events. The passcode and the session
// credential are never logged.
type AccessLogger struct {
	logger zerolog.Logger
}

// NewAccessLogger creates an access logger on the global logger.
func NewAccessLogger() *AccessLogger {
	return newAccessLogger(Logger())
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newAccessLogger(logger zerolog.Logger) *AccessLogger {
	return &AccessLogger{logger: logger.With().Str("component", "access").Logger()}
}

// logEvent writes an access event. Failures are logged at warn level.
func (l *AccessLogger) logEvent(event *accessEvent) {
	e := l.logger.Info()
	if event.Event == EventAuthFailure {
		e = l.logger.Warn()
	}

	e = e.Str("event", event.Event).Str("slug", event.Slug)

	if event.ShareName != "" {
		e = e.Str("share", event.ShareName)
	}
	if event.CameraID != "" {
		e = e.Str("camera", event.CameraID)
	}
	if event.Mode != "" {
		e = e.Str("mode", event.Mode)
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", truncateString(event.UserAgent, 100))
	}

	e.Msg(accessMessage(event.Event))
}

// LogAuthSuccess records a correct passcode submission.
func (l *AccessLogger) LogAuthSuccess(slug, shareName, ip, userAgent string) {
	l.logEvent(&accessEvent{
		Event:     EventAuthSuccess,
		Slug:      slug,
		ShareName: shareName,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

// LogAuthFailure records an incorrect passcode submission.
func (l *AccessLogger) LogAuthFailure(slug, shareName, ip, userAgent string) {
	l.logEvent(&accessEvent{
		Event:     EventAuthFailure,
		Slug:      slug,
		ShareName: shareName,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

// LogCameraView records a viewer starting a camera stream.
func (l *AccessLogger) LogCameraView(slug, shareName, cameraID, mode, ip string) {
	l.logEvent(&accessEvent{
		Event:     EventCameraView,
		Slug:      slug,
		ShareName: shareName,
		CameraID:  cameraID,
		Mode:      mode,
		IPAddress: ip,
	})
}

func accessMessage(event string) string {
	switch event {
	case EventAuthSuccess:
		return "Viewer authenticated"
	case EventAuthFailure:
		return "Viewer entered wrong passcode"
	case EventCameraView:
		return "Viewer started camera stream"
	default:
		return "Access event"
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
