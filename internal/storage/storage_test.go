// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package storage

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

func openTestStore(t *testing.T, path string) *SecretStore {
	t.Helper()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", path, err)
	}
	return store
}

func TestSecretStore_CRUD(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, "")
	defer store.Close()
	ctx := context.Background()

	if !store.InMemory() {
		t.Error("store opened without a path should be in memory")
	}

	if _, err := store.Get(ctx, "front"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	secret := []byte("0123456789abcdef0123456789abcdef")
	if err := store.Put(ctx, "front", secret); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, "back", []byte("other")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, "front")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Errorf("Get() = %q, want %q", got, secret)
	}

	slugs, err := store.Slugs(ctx)
	if err != nil {
		t.Fatalf("Slugs() error = %v", err)
	}
	sort.Strings(slugs)
	if len(slugs) != 2 || slugs[0] != "back" || slugs[1] != "front" {
		t.Errorf("Slugs() = %v, want [back front]", slugs)
	}

	if err := store.Delete(ctx, "front"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "front"); err != nil {
		t.Errorf("Delete() of missing key error = %v, want nil", err)
	}
	if _, err := store.Get(ctx, "front"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSecretStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	store := openTestStore(t, dir)
	if err := store.Put(ctx, "front", []byte("persisted")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := openTestStore(t, dir)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "front")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Get() after reopen = %q, want %q", got, "persisted")
	}
}

func TestSecretStore_CancelledContext(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, "")
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Put(ctx, "front", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Put() with cancelled ctx error = %v, want context.Canceled", err)
	}
}

func TestGCService_StopsOnCancel(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, "")
	defer store.Close()

	svc := NewGCService(store, 10*time.Millisecond)
	if svc.String() != "secret-store-gc" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
