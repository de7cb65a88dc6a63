// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		trustProxy bool
		tls        bool
		forwarded  string
		wantHSTS   bool
	}{
		{"plain http", false, false, "", false},
		{"direct tls", false, true, "", true},
		{"forwarded https untrusted", false, false, "https", false},
		{"forwarded https trusted", true, false, "https", true},
		{"forwarded http trusted", true, false, "http", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := SecurityHeaders(tt.trustProxy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/front/", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing nosniff header")
			}
			if rec.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("missing frame options header")
			}
			if got := rec.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS present = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	t.Parallel()

	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Share not found"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing/", nil))

	if rec.Code != http.StatusNotFound || rec.Body.String() != `{"error":"Share not found"}` {
		t.Errorf("response = %d %q", rec.Code, rec.Body.String())
	}
}
