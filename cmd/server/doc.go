// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Command server runs Marquee: the TMDB proxy API, the per-profile watchlist
with websocket notifications, and the server-rendered pages.

Startup order:

 1. Configuration: koanf v2 layering defaults, config.yaml, .env and the environment
 2. Logging: zerolog, optionally teed to a lumberjack-rotated file
 3. Upstream: TMDB client with freshness cache and optional circuit breaker
 4. Watchlist: badger (default) or in-memory backend, notifying the websocket hub
 5. Profiles: signed anonymous profile cookies, plus OIDC sign-in when enabled
 6. HTTP: chi router with the API, /ws, /auth and the pages
 7. Supervisor tree: suture v4 runs every long-lived service until SIGINT/SIGTERM

Minimal run with persistent lists:

	export TMDB_API_KEY=your-tmdb-key
	export PROFILE_SECRET=$(openssl rand -hex 32)
	export WATCHLIST_PATH=./data/watchlist
	./marquee

Without TMDB_API_KEY the process still starts; proxy routes answer 500 and
pages render their empty states.
*/
package main
