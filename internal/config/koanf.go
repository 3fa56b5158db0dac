// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file path.
const DotEnvPathEnvVar = "DOTENV_PATH"

// DefaultTMDBBaseURL is the upstream REST root.
const DefaultTMDBBaseURL = "https://api.themoviedb.org/3"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		TMDB: TMDBConfig{
			APIKey:          "",
			BaseURL:         DefaultTMDBBaseURL,
			ImageBaseURL:    "https://image.tmdb.org/t/p",
			Timeout:         10 * time.Second,
			CircuitBreaker:  false,
			CacheEnabled:    true,
			CacheMaxEntries: 2000,
		},
		Watchlist: WatchlistConfig{
			Store:      "badger",
			Path:       "/data/watchlist",
			GCInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			TrustedProxies:    []string{},
			ProfileSecret:     "",
			ProfileMaxAge:     365 * 24 * time.Hour,
			CookieSecure:      false,
		},
		Auth: AuthConfig{
			Enabled: false,
			OIDC: OIDCConfig{
				PostLogoutRedirectURI: "/",
				Scopes:                []string{"openid", "profile", "email"},
				PKCEEnabled:           true,
				CookieName:            "marquee_session",
				SessionMaxAge:         24 * time.Hour,
				SessionStore:          "badger",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Caller:     false,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
// Precedence: ENV (including .env) > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	// TMDB_API_KEY -> tmdb.api_key, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv merges a .env file into the process environment. Variables that
// are already set win over the file. A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
	"auth.oidc.scopes",
}

// processSliceFields converts comma-separated string values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot inject
// arbitrary keys.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// TMDB
	"tmdb_api_key":           "tmdb.api_key",
	"tmdb_base_url":          "tmdb.base_url",
	"tmdb_image_base_url":    "tmdb.image_base_url",
	"tmdb_timeout":           "tmdb.timeout",
	"tmdb_circuit_breaker":   "tmdb.circuit_breaker",
	"tmdb_cache_enabled":     "tmdb.cache_enabled",
	"tmdb_cache_max_entries": "tmdb.cache_max_entries",

	// Watchlist
	"watchlist_store":       "watchlist.store",
	"watchlist_path":        "watchlist.path",
	"watchlist_gc_interval": "watchlist.gc_interval",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"trusted_proxies":     "security.trusted_proxies",
	"profile_secret":      "security.profile_secret",
	"profile_max_age":     "security.profile_max_age",
	"cookie_secure":       "security.cookie_secure",

	// Auth
	"auth_enabled":                  "auth.enabled",
	"oidc_issuer_url":               "auth.oidc.issuer_url",
	"oidc_client_id":                "auth.oidc.client_id",
	"oidc_client_secret":            "auth.oidc.client_secret",
	"oidc_redirect_url":             "auth.oidc.redirect_url",
	"oidc_post_logout_redirect_uri": "auth.oidc.post_logout_redirect_uri",
	"oidc_scopes":                   "auth.oidc.scopes",
	"oidc_pkce_enabled":             "auth.oidc.pkce_enabled",
	"oidc_cookie_name":              "auth.oidc.cookie_name",
	"oidc_session_max_age":          "auth.oidc.session_max_age",
	"oidc_session_store":            "auth.oidc.session_store",

	// Logging
	"log_level":        "logging.level",
	"log_format":       "logging.format",
	"log_caller":       "logging.caller",
	"log_file":         "logging.file",
	"log_max_size_mb":  "logging.max_size_mb",
	"log_max_backups":  "logging.max_backups",
	"log_max_age_days": "logging.max_age_days",
}

// envTransformFunc transforms environment variable names to koanf paths.
//
// Examples:
//   - TMDB_API_KEY -> tmdb.api_key
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
