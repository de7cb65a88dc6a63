// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package share

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validShare(slug string) Share {
	return Share{
		Slug:     slug,
		Name:     "Share " + slug,
		AuthKind: AuthPIN4,
		Passcode: "1234",
		Cameras:  []string{"camera.front"},
	}
}

func TestSessionDuration_TTL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  SessionDuration
		want time.Duration
	}{
		{Session1Hour, 3600 * time.Second},
		{Session24Hours, 86400 * time.Second},
		{Session7Days, 604800 * time.Second},
		{Session30Days, 2592000 * time.Second},
		{Session1Year, 31536000 * time.Second},
		{SessionNever, 0},
		{"fortnight", 86400 * time.Second},
	}

	for _, tt := range tests {
		if got := tt.key.TTL(); got != tt.want {
			t.Errorf("%q.TTL() = %v, want %v", tt.key, got, tt.want)
		}
	}
	if !SessionNever.Never() || Session1Year.Never() {
		t.Error("Never() should only be true for the never key")
	}
}

func TestShare_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(s *Share)
		wantErr bool
	}{
		{"valid pin4", func(s *Share) {}, false},
		{"valid pin6", func(s *Share) { s.AuthKind = AuthPIN6; s.Passcode = "000000" }, false},
		{"valid alphanumeric", func(s *Share) { s.AuthKind = AuthAlphanumeric; s.Passcode = "open sesame" }, false},
		{"short alphanumeric", func(s *Share) { s.AuthKind = AuthAlphanumeric; s.Passcode = "abc" }, true},
		{"pin4 with letters", func(s *Share) { s.Passcode = "12ab" }, true},
		{"uppercase slug", func(s *Share) { s.Slug = "Front" }, true},
		{"long slug", func(s *Share) { s.Slug = strings.Repeat("x", 33) }, true},
		{"no name", func(s *Share) { s.Name = "" }, true},
		{"no cameras", func(s *Share) { s.Cameras = nil }, true},
		{"duplicate camera", func(s *Share) { s.Cameras = []string{"a", "a"} }, true},
		{"bad session duration", func(s *Share) { s.SessionDuration = "2w" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := validShare("front")
			s.SessionDuration = DefaultSessionDuration
			tt.mutate(&s)

			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidShare) {
				t.Errorf("Validate() error should wrap ErrInvalidShare, got %v", err)
			}
		})
	}
}

func TestShare_AllowsCamera(t *testing.T) {
	t.Parallel()

	s := validShare("front")
	s.Cameras = []string{"camera.front", "camera.garage"}

	if !s.AllowsCamera("camera.garage") {
		t.Error("camera.garage should be allowed")
	}
	if s.AllowsCamera("camera.back") {
		t.Error("camera.back should not be allowed")
	}
	if s.AllowsCamera("") {
		t.Error("empty camera id should not be allowed")
	}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	t.Run("resolves by slug", func(t *testing.T) {
		t.Parallel()

		reg, err := NewRegistry([]Share{validShare("front"), validShare("back")})
		if err != nil {
			t.Fatalf("NewRegistry() error = %v", err)
		}

		s, ok := reg.Resolve("back")
		if !ok || s.Slug != "back" {
			t.Fatalf("Resolve(back) = %+v, %v", s, ok)
		}
		if s.SessionDuration != DefaultSessionDuration {
			t.Errorf("SessionDuration = %q, want default %q", s.SessionDuration, DefaultSessionDuration)
		}
		if _, ok := reg.Resolve("side"); ok {
			t.Error("Resolve(side) should fail")
		}
		if reg.Len() != 2 || len(reg.List()) != 2 {
			t.Errorf("registry should hold 2 shares")
		}
		if got := reg.Slugs(); got[0] != "front" || got[1] != "back" {
			t.Errorf("Slugs() = %v, want definition order", got)
		}
	})

	t.Run("rejects duplicate slugs", func(t *testing.T) {
		t.Parallel()

		_, err := NewRegistry([]Share{validShare("front"), validShare("front")})
		if !errors.Is(err, ErrDuplicateSlug) {
			t.Fatalf("NewRegistry() error = %v, want ErrDuplicateSlug", err)
		}
	})

	t.Run("rejects invalid share", func(t *testing.T) {
		t.Parallel()

		bad := validShare("front")
		bad.Passcode = "12"
		_, err := NewRegistry([]Share{bad})
		if !errors.Is(err, ErrInvalidShare) {
			t.Fatalf("NewRegistry() error = %v, want ErrInvalidShare", err)
		}
	})

	t.Run("list is a copy", func(t *testing.T) {
		t.Parallel()

		reg, err := NewRegistry([]Share{validShare("front")})
		if err != nil {
			t.Fatalf("NewRegistry() error = %v", err)
		}
		list := reg.List()
		list[0].Slug = "mutated"
		if _, ok := reg.Resolve("front"); !ok {
			t.Error("mutating List() result changed the registry")
		}
	})
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"Front Door", "front-door"},
		{"  Back_Yard  Cam ", "back-yard-cam"},
		{"Grandma's Porch!", "grandmas-porch"},
		{"a -- b", "a-b"},
		{"---", "share"},
		{"", "share"},
		{"!!!", "share"},
		{strings.Repeat("ab ", 20), "ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab"},
	}

	for _, tt := range tests {
		got := Slugify(tt.name)
		if got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.name, got, tt.want)
		}
		if len(got) > 32 {
			t.Errorf("Slugify(%q) produced %d characters", tt.name, len(got))
		}
	}
}
