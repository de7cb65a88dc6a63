// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(&slogHandler{logger: newTestLogger(&buf)})

	logger.With("service", "api").WithGroup("restart").Warn("service restarting", "attempt", 3)

	output := buf.String()
	for _, want := range []string{`"level":"warn"`, `"service":"api"`, `"restart.attempt":3`, "service restarting"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestSlogHandler_GroupsAndBoundAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(&slogHandler{logger: newTestLogger(&buf)})

	logger.WithGroup("svc").With("name", "http").Info("restart",
		slog.Group("backoff", slog.Duration("wait", 0)), slog.Any("", "dropped"))

	output := buf.String()
	for _, want := range []string{`"svc.name":"http"`, `"svc.backoff.wait":0`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
	if strings.Contains(output, "dropped") {
		t.Errorf("attribute with empty key was written: %s", output)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := &slogHandler{logger: newTestLogger(&bytes.Buffer{}).Level(zerolog.WarnLevel)}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled on a warn logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled on a warn logger")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWatermillLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	wl := &WatermillLogger{logger: newTestLogger(&buf)}

	wl.With(watermill.LogFields{"topic": "share.front-door"}).
		Error("publish failed", errors.New("closed"), watermill.LogFields{"uuid": "abc"})

	output := buf.String()
	for _, want := range []string{`"topic":"share.front-door"`, `"uuid":"abc"`, `"error":"closed"`, "publish failed"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}
