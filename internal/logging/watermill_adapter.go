// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillLogger adapts zerolog to watermill.LoggerAdapter for the share
// toggle event bus.
type WatermillLogger struct {
	logger zerolog.Logger
}

var _ watermill.LoggerAdapter = (*WatermillLogger)(nil)

// NewWatermillLogger creates a watermill logger with component=eventbus.
func NewWatermillLogger() *WatermillLogger {
	return &WatermillLogger{logger: WithComponent("eventbus")}
}

// Error logs an error with watermill fields.
func (w *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	addLogFields(w.logger.Error().Err(err), fields).Msg(msg)
}

// Info logs at info level.
func (w *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	addLogFields(w.logger.Info(), fields).Msg(msg)
}

// Debug logs at debug level.
func (w *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	addLogFields(w.logger.Debug(), fields).Msg(msg)
}

// Trace logs at trace level. Watermill is chatty here (every publish and ack).
func (w *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	addLogFields(w.logger.Trace(), fields).Msg(msg)
}

// With returns a logger carrying the given fields on every message.
func (w *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := w.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &WatermillLogger{logger: ctx.Logger()}
}

func addLogFields(e *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}
