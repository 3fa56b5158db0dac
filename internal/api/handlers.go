// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"time"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/watchlist"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response and parameter helpers
//   - handlers_health.go: health and readiness probes
//   - handlers_proxy.go: TMDB passthrough routes
//   - handlers_watchlist.go: watchlist REST routes
type Handler struct {
	config    *config.Config
	fetcher   tmdb.Fetcher
	responses *cache.Cache
	watchlist *watchlist.Store
	wsHub     *ws.Hub
	startTime time.Time
}

// NewHandler creates the API handler.
//
// Dependencies:
//   - cfg: application configuration (the TMDB key decides proxy availability)
//   - fetcher: raw upstream access, usually a CircuitBreakerClient over a Client
//   - responses: the fetcher's freshness cache, reported by health (may be nil)
//   - store: per-profile watchlist persistence
//   - wsHub: websocket hub, used for health reporting (may be nil)
//
// Example:
//
//	handler := api.NewHandler(cfg, fetcher, responses, store, hub)
//	router := api.NewRouter(handler, profiles, authHandlers, cfg)
//	http.ListenAndServe(":3857", router.SetupChi())
func NewHandler(cfg *config.Config, fetcher tmdb.Fetcher, responses *cache.Cache, store *watchlist.Store, wsHub *ws.Hub) *Handler {
	return &Handler{
		config:    cfg,
		fetcher:   fetcher,
		responses: responses,
		watchlist: store,
		wsHub:     wsHub,
		startTime: time.Now(),
	}
}

// apiKeyConfigured reports whether proxy routes may call upstream.
func (h *Handler) apiKeyConfigured() bool {
	return h.config != nil && h.config.TMDB.APIKey != ""
}
