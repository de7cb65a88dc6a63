// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// fakeServer blocks in Serve until Shutdown is called.
type fakeServer struct {
	serveErr    error
	shutdownErr error
	serving     chan net.Listener
	stop        chan struct{}
	shutdowns   atomic.Int32
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		serving: make(chan net.Listener, 1),
		stop:    make(chan struct{}),
	}
}

func (f *fakeServer) Serve(l net.Listener) error {
	f.serving <- l
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stop)
	return f.shutdownErr
}

func waitServing(t *testing.T, f *fakeServer) net.Listener {
	t.Helper()

	select {
	case l := <-f.serving:
		return l
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start serving")
		return nil
	}
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	t.Parallel()

	for _, timeout := range []time.Duration{0, -time.Second} {
		svc := NewHTTPServerService(newFakeServer(), "127.0.0.1:0", timeout)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: shutdownTimeout = %v, want 10s", timeout, svc.shutdownTimeout)
		}
	}
	if got := NewHTTPServerService(newFakeServer(), "", 0).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	ln := waitServing(t, server)
	if ln.Addr().(*net.TCPAddr).Port == 0 {
		t.Error("listener should be bound to a real port")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if server.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", server.shutdowns.Load())
	}
}

func TestHTTPServerService_BindFailure(t *testing.T) {
	t.Parallel()

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer taken.Close()

	svc := NewHTTPServerService(newFakeServer(), taken.Addr().String(), time.Second)
	if err := svc.Serve(context.Background()); err == nil {
		t.Fatal("expected bind error for an address in use")
	}
}

func TestHTTPServerService_ServeFailure(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	server.serveErr = io.ErrUnexpectedEOF
	svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)

	err := svc.Serve(context.Background())
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("Serve() error = %v, want wrapped ErrUnexpectedEOF", err)
	}
}

func TestHTTPServerService_ShutdownFailure(t *testing.T) {
	t.Parallel()

	shutdownErr := errors.New("connections still active")
	server := newFakeServer()
	server.shutdownErr = shutdownErr
	svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitServing(t, server)
	cancel()

	if err := <-errCh; !errors.Is(err, shutdownErr) {
		t.Errorf("Serve() error = %v, want shutdown error", err)
	}
}

func TestHTTPServerService_RealServer(t *testing.T) {
	t.Parallel()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)

	bound := make(chan string, 1)
	svc.listen = func(network, address string) (net.Listener, error) {
		ln, err := net.Listen(network, address)
		if err == nil {
			bound <- ln.Addr().String()
		}
		return ln, err
	}

	sup := suture.New("test", suture.Spec{Timeout: 2 * time.Second})
	sup.Add(svc)
	ctx, cancel := context.WithCancel(context.Background())
	done := sup.ServeBackground(ctx)

	var addr string
	select {
	case addr = <-bound:
	case <-time.After(2 * time.Second):
		t.Fatal("service did not bind")
	}

	resp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()
	<-done
}
