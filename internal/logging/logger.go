// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package logging holds the process-wide zerolog logger for CamPass.
//
// main configures it once from the logging section of the configuration;
// handlers log through Ctx so every line carries the request ID and share slug:
//
//	logging.Init(cfg.Logging.ToLogging())
//	logging.Ctx(r.Context()).Debug().Msg("Adaptive stream unavailable")
//
// The suture supervisor and the share toggle bus get adapters
// (NewSlogLogger, NewWatermillLogger). Passcode attempts and camera views
// are written by AccessLogger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config selects level, output format and destination for the global logger.
type Config struct {
	// Level is one of the names accepted by ValidLevel.
	Level string
	// Format is json or console.
	Format string
	// Caller adds file:line to each entry.
	Caller bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig is json at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

var levels = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"disabled": zerolog.Disabled,
}

var (
	mu  sync.RWMutex
	log = build(DefaultConfig())
)

// Init replaces the global logger. Safe to call again after a config reload.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	log = l
	mu.Unlock()
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// parseLevel falls back to info for unknown names; config validation
// rejects those before Init runs.
func parseLevel(level string) zerolog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// ValidLevel reports whether level names a log level.
func ValidLevel(level string) bool {
	_, ok := levels[strings.ToLower(level)]
	return ok
}

// Logger returns the current global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug starts a debug entry on the global logger.
func Debug() *zerolog.Event { return current().Debug() }

// Info starts an info entry on the global logger.
func Info() *zerolog.Event { return current().Info() }

// Warn starts a warn entry on the global logger.
func Warn() *zerolog.Event { return current().Warn() }

// Error starts an error entry on the global logger.
func Error() *zerolog.Event { return current().Error() }

// Fatal exits the process after the entry is written.
func Fatal() *zerolog.Event { return current().Fatal() }

func current() *zerolog.Logger {
	l := Logger()
	return &l
}

// WithComponent returns a child of the global logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}
