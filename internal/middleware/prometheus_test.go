// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/campass/internal/metrics"
)

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/{slug}/api/stream/{cameraID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/{slug}/api/stream/{cameraID}", "418")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/front/api/stream/cam.a", "/back/api/stream/cam.b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("requests recorded under pattern = %v, want 2", got)
	}
}

func TestPrometheusMetrics_Unmatched(t *testing.T) {
	t.Parallel()

	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodPut, unmatchedRoute, "200")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/whatever", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched requests recorded = %v, want 1", got)
	}
}

func TestStatusWriter_KeepsStreamingCapabilities(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	sw := newStatusWriter(rec)

	if err := http.NewResponseController(sw).Flush(); err != nil {
		t.Errorf("Flush through wrapper error = %v", err)
	}
	if !rec.Flushed {
		t.Error("underlying recorder was not flushed")
	}
	if sw.Unwrap() != rec {
		t.Error("Unwrap() should return the wrapped writer")
	}

	sw.WriteHeader(http.StatusAccepted)
	sw.WriteHeader(http.StatusInternalServerError)
	if sw.Status() != http.StatusAccepted {
		t.Errorf("Status() = %d, want first written status", sw.Status())
	}
}
