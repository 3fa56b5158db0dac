// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"missing api key is allowed", func(c *Config) { c.TMDB.APIKey = "" }, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"bad base url", func(c *Config) { c.TMDB.BaseURL = "ftp://example.com" }, "TMDB_BASE_URL"},
		{"cache without bound", func(c *Config) { c.TMDB.CacheMaxEntries = 0 }, "TMDB_CACHE_MAX_ENTRIES"},
		{"cache disabled ignores bound", func(c *Config) {
			c.TMDB.CacheEnabled = false
			c.TMDB.CacheMaxEntries = 0
		}, ""},
		{"unknown store", func(c *Config) { c.Watchlist.Store = "redis" }, "WATCHLIST_STORE"},
		{"badger without path", func(c *Config) { c.Watchlist.Path = "" }, "WATCHLIST_PATH"},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitReqs = 0
			c.Security.RateLimitDisabled = true
		}, ""},
		{"rate window too long", func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour }, "RATE_LIMIT_WINDOW"},
		{"auth without issuer", func(c *Config) { c.Auth.Enabled = true }, "OIDC_ISSUER_URL"},
		{"auth without client", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.OIDC.IssuerURL = "https://id.example.com"
		}, "OIDC_CLIENT_ID"},
		{"auth complete", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.OIDC.IssuerURL = "https://id.example.com"
			c.Auth.OIDC.ClientID = "marquee"
			c.Auth.OIDC.RedirectURL = "https://marquee.example.com/auth/callback"
		}, ""},
		{"wildcard cors in production with auth", func(c *Config) {
			c.Server.Environment = "production"
			c.Auth.Enabled = true
			c.Auth.OIDC.IssuerURL = "https://id.example.com"
			c.Auth.OIDC.ClientID = "marquee"
			c.Auth.OIDC.RedirectURL = "https://marquee.example.com/auth/callback"
		}, "CORS_ORIGINS"},
		{"short profile secret in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.ProfileSecret = "short"
		}, "PROFILE_SECRET"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	cfg := defaultConfig()
	if cfg.ShouldWarnAboutCORS() {
		t.Error("no warning expected without auth")
	}
	cfg.Auth.Enabled = true
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("expected warning for wildcard CORS with auth")
	}
}

func TestAddr(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.Addr(); got != "0.0.0.0:3000" {
		t.Errorf("Addr() = %q", got)
	}
}
