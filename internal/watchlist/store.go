// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package watchlist keeps each profile's saved-for-later list.
//
// A list is one serialized JSON array stored under a single key per profile
// (see Key). Entries are unique by catalog id and ordered newest first.
// After every write the Notifier is told which profile changed so that the
// profile's open pages can refresh; no other coordination exists.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// KeyPrefix is the storage key of a list; profiles are appended after a colon.
const KeyPrefix = "moviestream_my_list"

// ErrInvalidEntry is returned when adding a movie without a positive id.
var ErrInvalidEntry = errors.New("watchlist entry must have a positive id")

// Key returns the storage key for a profile.
func Key(profileID string) string {
	if profileID == "" {
		return KeyPrefix
	}
	return KeyPrefix + ":" + profileID
}

// Notifier is told about every completed write.
type Notifier interface {
	WatchlistChanged(profileID string, count int)
}

// Store implements the list operations on top of a Backend.
// Writes are serialized; the last writer for a profile wins.
type Store struct {
	backend  Backend
	notifier Notifier
	now      func() time.Time
	mu       sync.Mutex
}

// NewStore creates a store. notifier may be nil.
func NewStore(backend Backend, notifier Notifier) *Store {
	return &Store{backend: backend, notifier: notifier, now: time.Now}
}

// load must be called with s.mu held.
func (s *Store) load(ctx context.Context, profileID string) ([]models.WatchlistEntry, error) {
	raw, err := s.backend.Load(ctx, Key(profileID))
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	if len(raw) == 0 {
		return []models.WatchlistEntry{}, nil
	}
	var entries []models.WatchlistEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("key", logging.SanitizeLogValue(Key(profileID))).
			Msg("Stored watchlist is corrupt, treating as empty")
		return []models.WatchlistEntry{}, nil
	}
	if entries == nil {
		entries = []models.WatchlistEntry{}
	}
	return entries, nil
}

// save must be called with s.mu held.
func (s *Store) save(ctx context.Context, profileID string, entries []models.WatchlistEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal watchlist: %w", err)
	}
	if err := s.backend.Save(ctx, Key(profileID), data); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}

func (s *Store) notify(profileID string, count int) {
	if s.notifier != nil {
		s.notifier.WatchlistChanged(profileID, count)
	}
}

// List returns the profile's entries, newest first.
func (s *Store) List(ctx context.Context, profileID string) ([]models.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, profileID)
}

// Add prepends movie with the current time. It reports false without writing
// when the id is already present.
func (s *Store) Add(ctx context.Context, profileID string, movie models.Movie) (bool, error) {
	if movie.ID <= 0 {
		metrics.RecordWatchlistMutation("add", "invalid")
		return false, ErrInvalidEntry
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx, profileID)
	if err != nil {
		metrics.RecordWatchlistMutation("add", "error")
		return false, err
	}
	for i := range entries {
		if entries[i].ID == movie.ID {
			metrics.RecordWatchlistMutation("add", "noop")
			return false, nil
		}
	}

	entry := models.WatchlistEntry{Movie: movie, AddedAt: s.now().UTC()}
	entries = append([]models.WatchlistEntry{entry}, entries...)
	if err := s.save(ctx, profileID, entries); err != nil {
		metrics.RecordWatchlistMutation("add", "error")
		return false, err
	}

	metrics.RecordWatchlistMutation("add", "ok")
	s.notify(profileID, len(entries))
	return true, nil
}

// Remove drops id from the list. A missing id still rewrites the list and
// notifies, matching the behaviour pages rely on to resynchronize.
func (s *Store) Remove(ctx context.Context, profileID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx, profileID)
	if err != nil {
		metrics.RecordWatchlistMutation("remove", "error")
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if err := s.save(ctx, profileID, kept); err != nil {
		metrics.RecordWatchlistMutation("remove", "error")
		return err
	}

	metrics.RecordWatchlistMutation("remove", "ok")
	s.notify(profileID, len(kept))
	return nil
}

// Clear deletes the profile's list.
func (s *Store) Clear(ctx context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, Key(profileID)); err != nil {
		metrics.RecordWatchlistMutation("clear", "error")
		return fmt.Errorf("clear watchlist: %w", err)
	}

	metrics.RecordWatchlistMutation("clear", "ok")
	s.notify(profileID, 0)
	return nil
}

// Contains reports whether id is in the list.
func (s *Store) Contains(ctx context.Context, profileID string, id int64) (bool, error) {
	entries, err := s.List(ctx, profileID)
	if err != nil {
		return false, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of entries.
func (s *Store) Count(ctx context.Context, profileID string) (int, error) {
	entries, err := s.List(ctx, profileID)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
