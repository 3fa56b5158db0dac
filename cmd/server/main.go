// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/watchlist"
	"github.com/tomtom215/marquee/internal/web"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

const (
	// responseCacheTTL is the fallback freshness for upstream paths without
	// a specific TTL.
	responseCacheTTL = time.Hour

	authCleanupInterval = 15 * time.Minute
)

//nolint:gocyclo // sequential startup wiring
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		File: logging.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   true,
		},
	})
	defer logging.Close()

	metrics.AppInfo.WithLabelValues(api.Version, runtime.Version()).Set(1)
	logging.Info().
		Str("version", api.Version).
		Str("addr", cfg.Addr()).
		Str("environment", cfg.Server.Environment).
		Str("watchlist_store", cfg.Watchlist.Store).
		Bool("sign_in", cfg.Auth.Enabled).
		Msg("Starting Marquee")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Upstream catalog
	var responses *cache.Cache
	if cfg.TMDB.CacheEnabled {
		responses = cache.New("tmdb", responseCacheTTL, cfg.TMDB.CacheMaxEntries)
		tree.AddStorageService(responses)
	}
	var fetcher tmdb.Fetcher = tmdb.NewClient(&cfg.TMDB, responses)
	if cfg.TMDB.CircuitBreaker {
		fetcher = tmdb.NewCircuitBreakerClient(fetcher, tmdb.DefaultBreakerSettings())
		logging.Info().Msg("Upstream circuit breaker enabled")
	}
	if !cfg.HasTMDBKey() {
		logging.Warn().Msg("TMDB_API_KEY not set; proxy routes will answer 500 and pages will render empty")
	}
	catalog := tmdb.NewCatalog(fetcher)

	// Storage. One badger DB holds both watchlists and sign-in sessions.
	var db *watchlist.BadgerBackend
	needBadger := cfg.Watchlist.Store == "badger" ||
		(cfg.Auth.Enabled && cfg.Auth.OIDC.SessionStore == "badger")
	if needBadger {
		db, err = watchlist.OpenBadger(cfg.Watchlist.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Watchlist.Path).Msg("Failed to open badger store")
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing badger store")
			}
		}()
		tree.AddStorageService(watchlist.NewGCService(db, cfg.Watchlist.GCInterval))
	}

	var backend watchlist.Backend = watchlist.NewMemoryBackend()
	if cfg.Watchlist.Store == "badger" {
		backend = db
	} else {
		logging.Warn().Msg("Watchlist store is in-memory; lists are lost on restart")
	}

	hub := ws.NewHub()
	tree.AddMessagingService(hub)
	store := watchlist.NewStore(backend, hub)

	// Profiles and sign-in
	var sessions auth.SessionStore
	var flow *auth.Flow
	if cfg.Auth.Enabled {
		if cfg.Auth.OIDC.SessionStore == "badger" {
			sessions = auth.NewBadgerSessionStore(db.DB())
		} else {
			sessions = auth.NewMemorySessionStore()
		}
		states := auth.NewMemoryStateStore()

		discoverCtx, discoverCancel := context.WithTimeout(ctx, 30*time.Second)
		flow, err = auth.NewFlow(discoverCtx, &cfg.Auth.OIDC, states)
		discoverCancel()
		if err != nil {
			logging.Fatal().Err(err).Str("issuer", cfg.Auth.OIDC.IssuerURL).Msg("Failed to initialize OIDC sign-in")
		}
		tree.AddStorageService(auth.NewCleanupService(sessions, states, authCleanupInterval))
		logging.Info().Str("issuer", cfg.Auth.OIDC.IssuerURL).Msg("OIDC sign-in enabled")
	}

	profiles, err := auth.NewProfileManager(&cfg.Security, sessions, cfg.Auth.OIDC.CookieName)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize profiles")
	}
	authHandlers := auth.NewHandlers(flow, sessions, profiles,
		cfg.Auth.OIDC.CookieName, cfg.Auth.OIDC.SessionMaxAge, cfg.Security.CookieSecure)

	// HTTP
	handler := api.NewHandler(cfg, fetcher, responses, store, hub)
	router := api.NewRouter(handler, profiles, authHandlers, cfg)

	site, err := web.NewSite(web.Config{
		Catalog:       tmdb.NewAccessor(catalog),
		Watchlist:     store,
		ImageBaseURL:  cfg.TMDB.ImageBaseURL,
		SignInEnabled: authHandlers.SignInEnabled(),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load page templates")
	}
	router.SetPages(site)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	logging.Info().Msg("Marquee stopped")
}
