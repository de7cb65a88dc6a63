// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

/*
Package supervisor runs CamPass's long-lived services under suture v4.

The tree has two layers so that a failing storage task never takes the HTTP
server down with it:

	RootSupervisor ("campass")
	├── StorageSupervisor ("storage-layer")
	│   └── GCService ("secret-store-gc")
	└── APISupervisor ("api-layer")
	    └── HTTPServerService ("http-server")

Supervisor events (service failures, restarts, backoff) are logged through
sutureslog onto the zerolog logger via logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddStorageService(storage.NewGCService(store, cfg.Storage.GCInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)
*/
package supervisor
