// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// DefaultBreakerName labels the upstream breaker in metrics.
const DefaultBreakerName = "tmdb-api"

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	Name        string
	MaxRequests uint32        // probes allowed while half-open
	Interval    time.Duration // closed-state counting window
	Timeout     time.Duration // open -> half-open delay
	MinRequests uint32        // requests before the failure ratio is considered
	FailureRate float64       // trip threshold, 0..1
}

// DefaultBreakerSettings opens after 60% failures across at least 10 requests
// and probes again after two minutes.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:        DefaultBreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		MinRequests: 10,
		FailureRate: 0.6,
	}
}

// CircuitBreakerClient wraps a Fetcher so a failing upstream is short-circuited
// instead of holding every page render for the full client timeout.
//
// Only upstream faults count as failures: a missing key, a cancelled request,
// or a 4xx (other than 429) says nothing about upstream health.
type CircuitBreakerClient struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker[json.RawMessage]
	name string
}

// NewCircuitBreakerClient wraps next with the given settings.
func NewCircuitBreakerClient(next Fetcher, s BreakerSettings) *CircuitBreakerClient {
	if s.Name == "" {
		s.Name = DefaultBreakerName
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRate
			if shouldTrip {
				logging.Warn().
					Str("breaker", s.Name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
		IsSuccessful: isHealthyOutcome,
	})

	return &CircuitBreakerClient{next: next, cb: cb, name: s.Name}
}

// Fetch forwards to the wrapped Fetcher unless the circuit is open.
func (c *CircuitBreakerClient) Fetch(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	raw, err := c.cb.Execute(func() (json.RawMessage, error) {
		return c.next.Fetch(ctx, path, params)
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(0)
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("breaker", c.name).Msg("[CIRCUIT BREAKER] Request rejected")
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(float64(c.cb.Counts().ConsecutiveFailures))
	}
	return raw, err
}

// State returns the current breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.cb.State()
}

// isHealthyOutcome decides which errors leave the breaker's failure count alone.
func isHealthyOutcome(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrAPIKeyMissing) || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError && apiErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
