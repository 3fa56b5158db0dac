// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads Marquee configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (CONFIG_PATH, ./config.yaml, /etc/marquee/config.yaml)
//  3. .env file: optional, loaded into the process environment (godotenv)
//  4. Environment Variables: override any setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	client := tmdb.NewClient(&cfg.TMDB, responseCache)
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Watchlist WatchlistConfig `koanf:"watchlist"`
	Security  SecurityConfig  `koanf:"security"`
	Auth      AuthConfig      `koanf:"auth"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// TMDBConfig configures the upstream media catalog.
type TMDBConfig struct {
	// APIKey is attached to every upstream request as the api_key query
	// parameter. When empty the proxy answers 500 without calling upstream.
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url"`
	ImageBaseURL string        `koanf:"image_base_url"`
	Timeout      time.Duration `koanf:"timeout"`

	// CircuitBreaker wraps the client in a gobreaker circuit breaker.
	CircuitBreaker bool `koanf:"circuit_breaker"`

	// CacheEnabled turns on the freshness cache in front of the upstream.
	CacheEnabled bool `koanf:"cache_enabled"`

	// CacheMaxEntries bounds the freshness cache. Past it the least recently
	// used response is dropped.
	CacheMaxEntries int `koanf:"cache_max_entries"`
}

// WatchlistConfig selects the watchlist persistence backend.
type WatchlistConfig struct {
	Store string `koanf:"store"` // badger or memory
	Path  string `koanf:"path"`  // badger directory

	// GCInterval is how often the badger value log is garbage collected.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// SecurityConfig holds HTTP surface hardening settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`

	// ProfileSecret signs the anonymous profile cookie. A random secret is
	// generated at startup when empty, which resets profiles on restart.
	ProfileSecret string        `koanf:"profile_secret"`
	ProfileMaxAge time.Duration `koanf:"profile_max_age"`
	CookieSecure  bool          `koanf:"cookie_secure"`
}

// AuthConfig configures optional sign-in through an external identity provider.
type AuthConfig struct {
	Enabled bool       `koanf:"enabled"`
	OIDC    OIDCConfig `koanf:"oidc"`
}

// OIDCConfig holds relying-party settings.
type OIDCConfig struct {
	IssuerURL             string        `koanf:"issuer_url"`
	ClientID              string        `koanf:"client_id"`
	ClientSecret          string        `koanf:"client_secret"`
	RedirectURL           string        `koanf:"redirect_url"`
	PostLogoutRedirectURI string        `koanf:"post_logout_redirect_uri"`
	Scopes                []string      `koanf:"scopes"`
	PKCEEnabled           bool          `koanf:"pkce_enabled"`
	CookieName            string        `koanf:"cookie_name"`
	SessionMaxAge         time.Duration `koanf:"session_max_age"`
	SessionStore          string        `koanf:"session_store"` // badger or memory
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	Caller     bool   `koanf:"caller"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// Load reads configuration from defaults, config file, .env, and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// HasTMDBKey reports whether an upstream credential is configured.
func (c *Config) HasTMDBKey() bool {
	return c.TMDB.APIKey != ""
}
