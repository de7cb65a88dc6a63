// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package gateway

import (
	"bufio"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/campass/internal/camera/cameratest"
	"github.com/tomtom215/campass/internal/stream"
)

func get(t *testing.T, srv *httptest.Server, path string, cookie *http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.AddCookie(cookie)

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// readEvent returns the next non-empty SSE line.
func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		for {
			line, err := r.ReadString('\n')
			if err != nil || strings.TrimSpace(line) != "" {
				ch <- result{strings.TrimRight(line, "\n"), err}
				return
			}
		}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			t.Fatalf("read event: %v", res.err)
		}
		return res.line
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestEvents_ToggleReachesOpenStream(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{KeepaliveInterval: 50 * time.Millisecond}, nil)
	srv := httptest.NewServer(h.handler)
	t.Cleanup(srv.Close)

	cookie := h.login(t, "", "garage", "4821")
	resp := get(t, srv, "/garage/api/events", cookie)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := bufio.NewReader(resp.Body)
	if got := readEvent(t, body); got != `data: {"available":false}` {
		t.Fatalf("first event = %q", got)
	}

	h.enable(t, "garage")

	for {
		got := readEvent(t, body)
		if got == ": keepalive" {
			continue
		}
		if got != `data: {"available":true}` {
			t.Fatalf("event after enable = %q", got)
		}
		return
	}
}

func TestStream_FallsBackToStillsMidStream(t *testing.T) {
	t.Parallel()

	source := &cameratest.Continuous{
		Source:       testSource(),
		NativeFrames: 2,
		NativeErr:    errors.New("mjpeg connection reset"),
	}
	h := newHarness(t, Options{}, source)
	h.enable(t, "garage")
	srv := httptest.NewServer(h.handler)
	t.Cleanup(srv.Close)

	cookie := h.login(t, "", "garage", "4821")
	resp := get(t, srv, "/garage/api/stream/cam.garage", cookie)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != stream.ContentType {
		t.Fatalf("Content-Type = %q", ct)
	}

	reader := multipart.NewReader(resp.Body, stream.Boundary)
	want := []string{"native-0", "native-1", "jpeg", "jpeg", "jpeg"}
	for i, w := range want {
		part, err := reader.NextPart()
		if err != nil {
			t.Fatalf("part %d: %v", i, err)
		}
		data, err := io.ReadAll(part)
		if err != nil {
			t.Fatalf("part %d body: %v", i, err)
		}
		if string(data) != w {
			t.Errorf("part %d = %q, want %q", i, data, w)
		}
	}
}
