// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package storage persists per-share signing secrets in BadgerDB so that
// issued viewer credentials survive a restart. With no path configured the
// database runs in memory and every restart invalidates all credentials.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campass/internal/logging"
)

// secretKeyPrefix namespaces signing secrets in the key space.
const secretKeyPrefix = "secret:"

// ErrNotFound is returned when no secret is stored for a slug.
var ErrNotFound = errors.New("secret not found")

// SecretStore is a BadgerDB-backed map from share slug to signing secret.
type SecretStore struct {
	db       *badger.DB
	inMemory bool
}

// Open opens the secret store at path, or an in-memory store if path is empty.
func Open(path string) (*SecretStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = newBadgerLogger()

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for secrets: %w", err)
	}
	return &SecretStore{db: db, inMemory: path == ""}, nil
}

// InMemory reports whether the store loses its contents on close.
func (s *SecretStore) InMemory() bool {
	return s.inMemory
}

// Get returns the secret for slug, or ErrNotFound.
func (s *SecretStore) Get(ctx context.Context, slug string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var secret []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(secretKeyPrefix + slug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get secret: %w", err)
		}
		secret, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return secret, nil
}

// Put stores the secret for slug, replacing any previous one.
func (s *SecretStore) Put(ctx context.Context, slug string, secret []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(secretKeyPrefix+slug), secret); err != nil {
			return fmt.Errorf("set secret: %w", err)
		}
		return nil
	})
}

// Delete removes the secret for slug. Missing secrets are not an error.
func (s *SecretStore) Delete(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(secretKeyPrefix + slug))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete secret: %w", err)
		}
		return nil
	})
}

// Slugs lists every slug that has a stored secret.
func (s *SecretStore) Slugs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var slugs []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := []byte(secretKeyPrefix)
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			slugs = append(slugs, strings.TrimPrefix(string(it.Item().Key()), secretKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	return slugs, nil
}

// RunGC reclaims value log space until badger reports nothing left to collect.
func (s *SecretStore) RunGC() error {
	if s.inMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close closes the underlying database.
func (s *SecretStore) Close() error {
	return s.db.Close()
}

// GCService runs value log garbage collection on an interval. It implements
// suture.Service.
type GCService struct {
	store    *SecretStore
	interval time.Duration
}

// NewGCService creates the garbage collection service.
func NewGCService(store *SecretStore, interval time.Duration) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GCService{store: store, interval: interval}
}

// Serve runs until ctx is cancelled. GC failures are logged, not fatal.
func (g *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.store.RunGC(); err != nil {
				logging.Warn().Err(err).Str("component", "storage").Msg("Value log GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (g *GCService) String() string {
	return "secret-store-gc"
}

// badgerLogger routes badger's internal logging through zerolog. Badger's
// info output is demoted to debug.
type badgerLogger struct {
	logger zerolog.Logger
}

func newBadgerLogger() *badgerLogger {
	return &badgerLogger{logger: logging.WithComponent("badger")}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(strings.TrimSpace(format), args...)
}
