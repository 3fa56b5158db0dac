// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package services adapts blocking components to suture's Serve(ctx) model.
//
// Most Marquee components (the websocket hub, the freshness cache, the
// watchlist GC and session cleanup loops) implement suture.Service
// themselves. The HTTP server does not: HTTPServerService translates
// ListenAndServe/Shutdown into a context-aware Serve.
package services
