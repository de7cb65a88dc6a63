// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

/*
Package main is the entry point for the CamPass server.

CamPass shares selected cameras with guests for a limited time behind a
passcode. Each share lives under its own slug; guests enter the passcode on
/{slug}/ and watch the share's cameras on /{slug}/viewer while the share is
enabled.

# Application Architecture

	RootSupervisor ("campass")
	├── StorageSupervisor ("storage-layer")
	│   └── secret-store-gc (badger value log GC)
	└── APISupervisor ("api-layer")
	    └── http-server (chi router)

Initialization order:

 1. Configuration: Koanf v2 (defaults, YAML file, environment)
 2. Logging: zerolog, json or console
 3. Secret store: badger at STORAGE_PATH, in memory when unset
 4. Keyring: one signing secret per share, generated on first start
 5. Shares: registry and enable toggles (watermill gochannel)
 6. Cameras: HTTP source with per-camera circuit breakers
 7. HTTP server: gateway router under BASE_PATH
 8. Supervisor tree: runs until SIGINT or SIGTERM

# Signal Handling

On SIGINT or SIGTERM the server stops accepting connections, ends open event
and frame streams, and waits up to server.shutdown_timeout for in-flight
requests before closing the secret store.
*/
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/campass/internal/auth"
	"github.com/tomtom215/campass/internal/camera"
	"github.com/tomtom215/campass/internal/config"
	"github.com/tomtom215/campass/internal/gateway"
	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/share"
	"github.com/tomtom215/campass/internal/storage"
	"github.com/tomtom215/campass/internal/supervisor"
	"github.com/tomtom215/campass/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.ToLogging())
	logging.Info().
		Int("shares", len(cfg.Shares)).
		Int("cameras", len(cfg.Cameras)).
		Str("base_path", cfg.Server.BasePath).
		Bool("trust_proxy", cfg.Server.TrustProxy).
		Bool("admin_enabled", cfg.Security.AdminToken != "").
		Msg("Starting CamPass")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("CamPass stopped")
}

func run(cfg *config.Config) error {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing secret store")
		}
	}()
	if store.InMemory() {
		logging.Warn().Msg("STORAGE_PATH not set: signing secrets are kept in memory and sessions end on restart")
	}

	registry, err := share.NewRegistry(cfg.ShareDefinitions())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keyring := auth.NewKeyring()
	if err := keyring.Provision(ctx, store, registry.Slugs()); err != nil {
		return err
	}

	toggles := share.NewToggles(registry, logging.NewWatermillLogger())
	source := camera.NewHTTPSource(cfg.CameraDefinitions(), cfg.Stream.SourceConfig())

	router := gateway.NewRouter(gateway.Options{
		BasePath:          cfg.Server.BasePath,
		TrustProxy:        cfg.Server.TrustProxy,
		AdminToken:        cfg.Security.AdminToken,
		AuthRateLimit:     cfg.Security.AuthRateLimit,
		AuthRateWindow:    cfg.Security.AuthRateWindow,
		KeepaliveInterval: cfg.Stream.KeepaliveInterval,
		FrameInterval:     cfg.Stream.FrameInterval,
	}, gateway.Deps{
		Registry: registry,
		Toggles:  toggles,
		Secrets:  keyring,
		Tokens:   auth.NewTokenService(),
		Source:   source,
	})

	// Request contexts derive from streamCtx so that Shutdown can end open
	// event and frame streams instead of waiting them out.
	streamCtx, endStreams := context.WithCancel(context.Background())
	defer endStreams()

	server := &http.Server{
		Handler:           router.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return streamCtx },
	}
	server.RegisterOnShutdown(endStreams)
	server.RegisterOnShutdown(func() {
		if err := toggles.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing toggle bus")
		}
	})

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	tree.AddStorageService(storage.NewGCService(store, cfg.Storage.GCInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Server.ShutdownTimeout))

	err = tree.Serve(ctx)
	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within shutdown timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
