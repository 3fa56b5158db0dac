// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs Marquee's long-lived services under suture v4.

The tree has three layers, each restarting its own children:

	marquee
	├── storage-layer
	│   ├── watchlist-badger-gc   (badger store only)
	│   ├── auth-cleanup          (sign-in enabled only)
	│   └── cache-janitor:tmdb    (cache enabled only)
	├── messaging-layer
	│   └── websocket-hub
	└── api-layer
	    └── http-server

Supervisor events go to slog; main passes logging.NewSlogLogger so they land
in the same zerolog stream as everything else.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
