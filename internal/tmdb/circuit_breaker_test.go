// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Hour,
		MinRequests: 5,
		FailureRate: 0.6,
	}
}

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	f := &stubFetcher{err: &APIError{Endpoint: "movie/popular", StatusCode: http.StatusBadGateway}}
	cb := NewCircuitBreakerClient(f, testBreakerSettings("test-open"))

	for i := 0; i < 5; i++ {
		_, err := cb.Fetch(context.Background(), "movie/popular", nil)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	calls := len(f.calls)
	_, err := cb.Fetch(context.Background(), "movie/popular", nil)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Len(t, f.calls, calls, "open circuit must not reach upstream")
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	f := &stubFetcher{err: &APIError{Endpoint: "movie/{id}", StatusCode: http.StatusNotFound}}
	cb := NewCircuitBreakerClient(f, testBreakerSettings("test-404"))

	for i := 0; i < 20; i++ {
		_, _ = cb.Fetch(context.Background(), "movie/1", nil)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_MissingKeyDoesNotTrip(t *testing.T) {
	f := &stubFetcher{err: ErrAPIKeyMissing}
	cb := NewCircuitBreakerClient(f, testBreakerSettings("test-nokey"))

	for i := 0; i < 20; i++ {
		_, err := cb.Fetch(context.Background(), "movie/popular", nil)
		assert.ErrorIs(t, err, ErrAPIKeyMissing)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_PassesThroughBody(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"genre/movie/list": `{"genres":[]}`}}
	cb := NewCircuitBreakerClient(f, BreakerSettings{})

	raw, err := cb.Fetch(context.Background(), "genre/movie/list", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"genres":[]}`, string(raw))
}

func TestIsHealthyOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"missing key", ErrAPIKeyMissing, true},
		{"cancelled", context.Canceled, true},
		{"not found", &APIError{StatusCode: 404}, true},
		{"unauthorized", &APIError{StatusCode: 401}, true},
		{"rate limited", &APIError{StatusCode: 429}, false},
		{"server error", &APIError{StatusCode: 503}, false},
		{"network", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isHealthyOutcome(tt.err))
		})
	}
}

func TestStateToString(t *testing.T) {
	assert.Equal(t, "closed", stateToString(gobreaker.StateClosed))
	assert.Equal(t, "half-open", stateToString(gobreaker.StateHalfOpen))
	assert.Equal(t, "open", stateToString(gobreaker.StateOpen))
	assert.Equal(t, float64(2), stateToFloat(gobreaker.StateOpen))
}
