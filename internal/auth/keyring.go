// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/storage"
)

// SecretSize is the length in bytes of a generated signing secret.
const SecretSize = 32

// SecretBackend persists signing secrets between restarts.
type SecretBackend interface {
	Get(ctx context.Context, slug string) ([]byte, error)
	Put(ctx context.Context, slug string, secret []byte) error
	Delete(ctx context.Context, slug string) error
	Slugs(ctx context.Context) ([]string, error)
}

// Keyring holds the signing secret of every configured share.
//
// It is written once by Provision during startup and only read afterwards.
type Keyring struct {
	mu      sync.RWMutex
	secrets map[string][]byte
}

// NewKeyring creates an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{secrets: make(map[string][]byte)}
}

// GenerateSecret returns SecretSize random bytes.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate signing secret: %w", err)
	}
	return secret, nil
}

// Provision loads the secret of each slug from backend, generating and
// storing one for slugs that have none. Secrets in backend that belong to
// no listed slug are deleted, which invalidates every credential of a
// removed share.
func (k *Keyring) Provision(ctx context.Context, backend SecretBackend, slugs []string) error {
	log := logging.WithComponent("keyring")
	loaded := make(map[string][]byte, len(slugs))

	for _, slug := range slugs {
		secret, err := backend.Get(ctx, slug)
		switch {
		case err == nil && len(secret) > 0:
			log.Debug().Str("slug", slug).Msg("Loaded signing secret")
		case err == nil || errors.Is(err, storage.ErrNotFound):
			secret, err = GenerateSecret()
			if err != nil {
				return err
			}
			if err := backend.Put(ctx, slug, secret); err != nil {
				return fmt.Errorf("store signing secret for %q: %w", slug, err)
			}
			log.Info().Str("slug", slug).Msg("Generated signing secret")
		default:
			return fmt.Errorf("load signing secret for %q: %w", slug, err)
		}
		loaded[slug] = secret
	}

	stored, err := backend.Slugs(ctx)
	if err != nil {
		return fmt.Errorf("list stored secrets: %w", err)
	}
	for _, slug := range stored {
		if _, ok := loaded[slug]; ok {
			continue
		}
		if err := backend.Delete(ctx, slug); err != nil {
			return fmt.Errorf("discard signing secret for %q: %w", slug, err)
		}
		log.Info().Str("slug", slug).Msg("Discarded signing secret of removed share")
	}

	k.mu.Lock()
	k.secrets = loaded
	k.mu.Unlock()
	return nil
}

// Set installs a secret for slug directly.
func (k *Keyring) Set(slug string, secret []byte) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.secrets[slug] = secret
}

// Secret returns the signing secret for slug.
func (k *Keyring) Secret(slug string) ([]byte, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	secret, ok := k.secrets[slug]
	return secret, ok && len(secret) > 0
}
