// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Rate limit bounds.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// minProfileSecretLength is enforced in production only.
const minProfileSecretLength = 32

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true,
}

var validStores = map[string]bool{
	"badger": true, "memory": true,
}

// Validate checks that configuration values are present and sane.
// A missing TMDB key is not an error; the proxy reports it per request.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateWatchlist(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL"); err != nil {
		return err
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.TMDB.CacheEnabled && c.TMDB.CacheMaxEntries <= 0 {
		return fmt.Errorf("TMDB_CACHE_MAX_ENTRIES must be positive when the cache is enabled")
	}
	return nil
}

func (c *Config) validateWatchlist() error {
	if !validStores[c.Watchlist.Store] {
		return fmt.Errorf("WATCHLIST_STORE must be one of: badger, memory")
	}
	if c.Watchlist.Store == "badger" && c.Watchlist.Path == "" {
		return fmt.Errorf("WATCHLIST_PATH is required when WATCHLIST_STORE=badger")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateCORS(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if c.IsProduction() && c.Security.ProfileSecret != "" && len(c.Security.ProfileSecret) < minProfileSecretLength {
		return fmt.Errorf("PROFILE_SECRET must be at least %d characters in production", minProfileSecretLength)
	}
	return nil
}

// validateCORS rejects wildcard origins in production once sign-in is on,
// since session cookies would then be readable cross-origin.
func (c *Config) validateCORS() error {
	if c.Auth.Enabled && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed in production with AUTH_ENABLED=true; " +
			"set specific origins, e.g. CORS_ORIGINS=https://marquee.example.com")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports a wildcard CORS policy worth logging at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Auth.Enabled && c.hasWildcardCORS()
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %s and %s", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateAuth() error {
	if !c.Auth.Enabled {
		return nil
	}
	o := c.Auth.OIDC
	if o.IssuerURL == "" {
		return fmt.Errorf("OIDC_ISSUER_URL is required when AUTH_ENABLED=true")
	}
	if err := validateHTTPURL(o.IssuerURL, "OIDC_ISSUER_URL"); err != nil {
		return err
	}
	if o.ClientID == "" {
		return fmt.Errorf("OIDC_CLIENT_ID is required when AUTH_ENABLED=true")
	}
	if o.RedirectURL == "" {
		return fmt.Errorf("OIDC_REDIRECT_URL is required when AUTH_ENABLED=true")
	}
	if !validStores[o.SessionStore] {
		return fmt.Errorf("OIDC_SESSION_STORE must be one of: badger, memory")
	}
	if o.SessionStore == "badger" && c.Watchlist.Path == "" {
		return fmt.Errorf("WATCHLIST_PATH is required for the badger session store")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL accepts absolute http(s) URLs without query strings.
// Paths are allowed since the upstream root carries a version segment.
func validateHTTPURL(rawURL, fieldName string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", fieldName, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsed.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", fieldName)
	}
	return nil
}
