// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInvalidState is returned for unknown, replayed or expired OAuth state.
var ErrInvalidState = errors.New("invalid or expired state")

// DefaultStateTTL bounds how long a user may take at the provider.
const DefaultStateTTL = 10 * time.Minute

// StateData is what the login request leaves for its callback.
type StateData struct {
	CodeVerifier      string
	PostLoginRedirect string
	ExpiresAt         time.Time
}

// IsExpired checks if the state has expired.
func (s *StateData) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// StateStore holds pending authorization requests.
type StateStore interface {
	Store(ctx context.Context, key string, state *StateData) error
	// Consume returns and removes the state. Each key works once.
	Consume(ctx context.Context, key string) (*StateData, error)
	CleanupExpired(ctx context.Context) (int, error)
}

// MemoryStateStore is an in-memory StateStore.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]StateData
}

// NewMemoryStateStore creates an empty store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]StateData)}
}

// Store saves state under key.
func (s *MemoryStateStore) Store(_ context.Context, key string, state *StateData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = *state
	return nil
}

// Consume returns and deletes the state for key.
func (s *MemoryStateStore) Consume(_ context.Context, key string) (*StateData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key]
	if !ok {
		return nil, ErrInvalidState
	}
	delete(s.states, key)
	if state.IsExpired() {
		return nil, ErrInvalidState
	}
	return &state, nil
}

// CleanupExpired removes all expired states.
func (s *MemoryStateStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, state := range s.states {
		if state.IsExpired() {
			delete(s.states, key)
			count++
		}
	}
	return count, nil
}
