// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/middleware"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

// Pages registers the server-rendered routes.
type Pages interface {
	Routes(r chi.Router)
}

// Router wires handlers, auth and pages into a chi mux.
type Router struct {
	handler       *Handler
	profiles      *auth.ProfileManager
	authHandlers  *auth.Handlers
	pages         Pages
	chiMiddleware *ChiMiddleware
	corsOrigins   []string
	imageBaseURL  string
}

// NewRouter creates a router. authHandlers and pages may be nil.
func NewRouter(handler *Handler, profiles *auth.ProfileManager, authHandlers *auth.Handlers, cfg *config.Config) *Router {
	var sec *config.SecurityConfig
	if cfg != nil {
		sec = &cfg.Security
	}
	router := &Router{
		handler:       handler,
		profiles:      profiles,
		authHandlers:  authHandlers,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(sec)),
	}
	if sec != nil {
		router.corsOrigins = sec.CORSOrigins
	}
	if cfg != nil {
		router.imageBaseURL = cfg.TMDB.ImageBaseURL
	}
	return router
}

// SetPages mounts the presentation layer at the root.
func (router *Router) SetPages(p Pages) {
	router.pages = p
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(chiMiddleware(middleware.SecurityHeaders(router.imageBaseURL)))
	r.Use(router.chiMiddleware.CORS())

	// ========================
	// Health and Metrics
	// ========================
	r.Route("/api/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/ready", router.handler.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// TMDB Proxy
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.Compression))
		r.Use(chiMiddleware(router.handler.RequireAPIKey))
		router.proxyRoutes(r)
	})

	// ========================
	// Profile-scoped routes
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware(router.profiles.Middleware))

		r.Route("/api/watchlist", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/", router.handler.WatchlistList)
			r.Post("/", router.handler.WatchlistAdd)
			r.Delete("/", router.handler.WatchlistClear)
			r.Get("/count", router.handler.WatchlistCountHandler)
			r.Get("/{id}", router.handler.WatchlistContains)
			r.Delete("/{id}", router.handler.WatchlistRemove)
		})

		r.Get("/ws", ws.Handler(router.handler.wsHub, router.corsOrigins, auth.ProfileID))

		if router.authHandlers != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitAuth())
				r.Get("/me", router.authHandlers.Me)
				r.Get("/login", router.authHandlers.Login)
				r.Get("/callback", router.authHandlers.Callback)
				r.Get("/logout", router.authHandlers.Logout)
			})
		}

		if router.pages != nil {
			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware(middleware.Compression))
				router.pages.Routes(r)
			})
		}
	})

	return r
}

func (router *Router) proxyRoutes(r chi.Router) {
	h := router.handler

	r.Get("/api/genres", h.genres("genre/movie/list", "Failed to fetch genres"))

	r.Route("/api/movies", func(r chi.Router) {
		r.Get("/discover", h.discover("discover/movie", movieYearKey, "Failed to discover movies"))
		r.Get("/search", h.search("search/movie", "Failed to search movies"))
		r.Get("/genres", h.genres("genre/movie/list", "Failed to fetch genres"))
		r.Get("/trending", h.trending("movie", "Failed to fetch trending movies"))
		r.Get("/popular", h.listing("movie/popular", "Failed to fetch popular movies"))
		r.Get("/now-playing", h.listing("movie/now_playing", "Failed to fetch now playing movies"))
		r.Get("/upcoming", h.listing("movie/upcoming", "Failed to fetch upcoming movies"))
		r.Get("/top-rated", h.listing("movie/top_rated", "Failed to fetch top rated movies"))
		r.Get("/{id}", h.byID("movie/%d/credits", "Failed to fetch movie credits"))
		r.Get("/{id}/credits", h.byID("movie/%d/credits", "Failed to fetch movie credits"))
		r.Get("/{id}/details", h.byID("movie/%d", "Failed to fetch movie details"))
		r.Get("/{id}/similar", h.byID("movie/%d/similar", "Failed to fetch similar movies"))
	})

	r.Route("/api/tv", func(r chi.Router) {
		r.Get("/discover", h.discover("discover/tv", tvYearKey, "Failed to discover TV shows"))
		r.Get("/search", h.search("search/tv", "Failed to search TV shows"))
		r.Get("/genres", h.genres("genre/tv/list", "Failed to fetch TV genres"))
		r.Get("/trending", h.trending("tv", "Failed to fetch trending TV shows"))
		r.Get("/popular", h.listing("tv/popular", "Failed to fetch popular TV shows"))
		r.Get("/on-the-air", h.listing("tv/on_the_air", "Failed to fetch on the air TV shows"))
		r.Get("/airing-today", h.listing("tv/airing_today", "Failed to fetch airing today TV shows"))
		r.Get("/top-rated", h.listing("tv/top_rated", "Failed to fetch top rated TV shows"))
		r.Get("/{id}", h.byID("tv/%d", "Failed to fetch TV show details"))
		r.Get("/{id}/credits", h.byID("tv/%d/credits", "Failed to fetch TV credits"))
		r.Get("/{id}/similar", h.byID("tv/%d/similar", "Failed to fetch similar TV shows"))
	})
}
