// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package websocket pushes watchlist change notifications to open pages.

Every connection belongs to one profile. When a profile's watchlist is
written, the hub sends a watchlist_updated message to that profile's
connections and to no one else, so each open page can refetch its view.

Key Components:

  - Hub: owns the client set and routes messages. Run it under a supervisor
    with RunWithContext.
  - Client: one connection with a read pump (answers "ping" with "pong") and a
    write pump (delivers messages, sends protocol pings).
  - Handler: upgrades GET /ws requests for the caller's profile.

Message Types:

  - watchlist_updated: {"profileId": "...", "count": n}
  - ping / pong: application-level keepalive

Delivery is best-effort. A client whose send buffer is full is dropped.

Usage:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	store := watchlist.NewStore(backend, hub)
	r.Get("/ws", websocket.Handler(hub, allowedOrigins, profileFromRequest))
*/
package websocket
