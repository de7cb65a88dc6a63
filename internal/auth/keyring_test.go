// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/campass/internal/storage"
)

func openStore(t *testing.T) *storage.SecretStore {
	t.Helper()
	store, err := storage.Open("")
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestKeyring_ProvisionGeneratesAndReuses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openStore(t)

	first := NewKeyring()
	if err := first.Provision(ctx, store, []string{"front", "back"}); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	front, ok := first.Secret("front")
	if !ok || len(front) != SecretSize {
		t.Fatalf("Secret(front) = %d bytes, %v", len(front), ok)
	}
	back, _ := first.Secret("back")
	if bytes.Equal(front, back) {
		t.Error("shares must not share a signing secret")
	}

	second := NewKeyring()
	if err := second.Provision(ctx, store, []string{"front", "back"}); err != nil {
		t.Fatalf("second Provision() error = %v", err)
	}
	again, _ := second.Secret("front")
	if !bytes.Equal(front, again) {
		t.Error("secret should be reused from the backend")
	}
}

func TestKeyring_ProvisionDiscardsRemovedShares(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openStore(t)

	kr := NewKeyring()
	if err := kr.Provision(ctx, store, []string{"front", "gone"}); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	oldGone, _ := kr.Secret("gone")

	kr = NewKeyring()
	if err := kr.Provision(ctx, store, []string{"front"}); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if _, ok := kr.Secret("gone"); ok {
		t.Error("removed share should have no secret")
	}
	if _, err := store.Get(ctx, "gone"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("backend still holds removed share's secret: %v", err)
	}

	// Re-adding the slug yields a fresh secret, so old credentials stay dead.
	kr = NewKeyring()
	if err := kr.Provision(ctx, store, []string{"front", "gone"}); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	newGone, _ := kr.Secret("gone")
	if bytes.Equal(oldGone, newGone) {
		t.Error("re-added share reused its discarded secret")
	}
}

func TestKeyring_SecretMissing(t *testing.T) {
	t.Parallel()

	kr := NewKeyring()
	if _, ok := kr.Secret("front"); ok {
		t.Error("empty keyring should have no secrets")
	}
	kr.Set("front", nil)
	if _, ok := kr.Secret("front"); ok {
		t.Error("empty secret should read as missing")
	}
}

func TestSessionCookie(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ttl        time.Duration
		secure     bool
		wantMaxAge int
	}{
		{"one hour", time.Hour, false, 3600},
		{"one year over tls", 365 * 24 * time.Hour, true, 31536000},
		{"never", 0, false, NeverMaxAge},
	}

	for _, tt := range tests {
		c := SessionCookie("front", "tok", "/front", tt.ttl, tt.secure)
		if c.Name != "campass_front" {
			t.Errorf("%s: Name = %q", tt.name, c.Name)
		}
		if c.MaxAge != tt.wantMaxAge {
			t.Errorf("%s: MaxAge = %d, want %d", tt.name, c.MaxAge, tt.wantMaxAge)
		}
		if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.Path != "/front" || c.Secure != tt.secure {
			t.Errorf("%s: unexpected attributes %+v", tt.name, c)
		}
	}
}

func TestTokenFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/front/api/status", nil)
	r.AddCookie(&http.Cookie{Name: "campass_back", Value: "other"})
	if got := TokenFromRequest(r, "front"); got != "" {
		t.Errorf("TokenFromRequest() = %q, want empty", got)
	}

	r.AddCookie(&http.Cookie{Name: "campass_front", Value: "mine"})
	if got := TokenFromRequest(r, "front"); got != "mine" {
		t.Errorf("TokenFromRequest() = %q, want mine", got)
	}
}
