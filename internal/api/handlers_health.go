// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// HealthStatus is the /api/health payload.
type HealthStatus struct {
	Status           string       `json:"status"`
	Version          string       `json:"version"`
	TMDBConfigured   bool         `json:"tmdb_configured"`
	CircuitBreaker   string       `json:"circuit_breaker,omitempty"`
	WebSocketClients int          `json:"websocket_clients"`
	Cache            *CacheHealth `json:"cache,omitempty"`
	Uptime           float64      `json:"uptime"`
}

// CacheHealth summarizes the upstream response cache.
type CacheHealth struct {
	Entries  int     `json:"entries"`
	Capacity int     `json:"capacity"`
	HitRate  float64 `json:"hit_rate"`
}

// breakerState returns the upstream breaker state when the fetcher has one.
func (h *Handler) breakerState() (gobreaker.State, bool) {
	cb, ok := h.fetcher.(*tmdb.CircuitBreakerClient)
	if !ok {
		return gobreaker.StateClosed, false
	}
	return cb.State(), true
}

// Health reports overall status. The service is "degraded" without a TMDB key
// or while the upstream breaker is open, but always answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:         "healthy",
		Version:        Version,
		TMDBConfigured: h.apiKeyConfigured(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}
	if h.responses != nil {
		health.Cache = &CacheHealth{
			Entries:  h.responses.Len(),
			Capacity: h.responses.Capacity(),
			HitRate:  h.responses.HitRate(),
		}
	}
	if state, ok := h.breakerState(); ok {
		health.CircuitBreaker = state.String()
		if state == gobreaker.StateOpen {
			health.Status = "degraded"
		}
	}
	if !health.TMDBConfigured {
		health.Status = "degraded"
	}

	respondJSON(w, http.StatusOK, models.NewSuccess(health))
}

// HealthReady returns 200 only when upstream calls can be made: a key is set
// and the breaker is not open. Otherwise 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	keyed := h.apiKeyConfigured()
	breakerOpen := false
	if state, ok := h.breakerState(); ok {
		breakerOpen = state == gobreaker.StateOpen
	}
	ready := keyed && !breakerOpen

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"tmdb_configured": keyed,
			"breaker_open":    breakerOpen,
			"ready_to_serve":  ready,
			"uptime":          time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}
