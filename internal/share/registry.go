// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package share

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tomtom215/campass/internal/validation"
)

// Registry resolves slugs to shares. It is immutable after construction and
// safe for concurrent use.
type Registry struct {
	shares []Share
}

// NewRegistry validates the shares and builds a registry. Slugs must be unique.
func NewRegistry(shares []Share) (*Registry, error) {
	seen := make(map[string]struct{}, len(shares))
	owned := make([]Share, 0, len(shares))

	for i := range shares {
		s := shares[i]
		if s.SessionDuration == "" {
			s.SessionDuration = DefaultSessionDuration
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[s.Slug]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSlug, s.Slug)
		}
		seen[s.Slug] = struct{}{}

		s.Cameras = append([]string(nil), s.Cameras...)
		owned = append(owned, s)
	}

	return &Registry{shares: owned}, nil
}

// Resolve returns the share with the given slug.
func (r *Registry) Resolve(slug string) (Share, bool) {
	for i := range r.shares {
		if r.shares[i].Slug == slug {
			return r.shares[i], true
		}
	}
	return Share{}, false
}

// List returns every share in definition order.
func (r *Registry) List() []Share {
	out := make([]Share, len(r.shares))
	copy(out, r.shares)
	return out
}

// Slugs returns every share slug in definition order.
func (r *Registry) Slugs() []string {
	out := make([]string, len(r.shares))
	for i := range r.shares {
		out[i] = r.shares[i].Slug
	}
	return out
}

// Len returns the number of shares.
func (r *Registry) Len() int {
	return len(r.shares)
}

var (
	slugSeparators = regexp.MustCompile(`[\s_]+`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes     = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a slug from a display name: lowercased, whitespace and
// underscores become dashes, anything else outside [a-z0-9-] is dropped.
// Names with nothing usable become "share".
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugSeparators.ReplaceAllString(slug, "-")
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > validation.MaxSlugLength {
		slug = strings.TrimRight(slug[:validation.MaxSlugLength], "-")
	}
	if slug == "" {
		return "share"
	}
	return slug
}
