// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/marquee/internal/logging"
)

// DefaultGCRatio is the value-log discard ratio used by RunGC.
const DefaultGCRatio = 0.5

// closeTimeout bounds how long Close waits for badger to flush.
const closeTimeout = 30 * time.Second

// ErrBackendClosed is returned by operations on a closed BadgerBackend.
var ErrBackendClosed = errors.New("watchlist backend is closed")

// BadgerBackend stores lists in BadgerDB. The underlying DB can be shared
// with other stores (sessions) that use disjoint key prefixes.
type BadgerBackend struct {
	db     *badger.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) a badger database at path.
func OpenBadger(path string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().Str("path", path).Msg("Watchlist store opened")
	return &BadgerBackend{db: db, path: path}, nil
}

// OpenBadgerInMemory opens a badger database that never touches disk.
func OpenBadgerInMemory() (*BadgerBackend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory BadgerDB: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

// DB exposes the database for stores that share it.
func (b *BadgerBackend) DB() *badger.DB {
	return b.db
}

func (b *BadgerBackend) isClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// Load reads key. A missing key yields (nil, nil).
func (b *BadgerBackend) Load(_ context.Context, key string) ([]byte, error) {
	if b.isClosed() {
		return nil, ErrBackendClosed
	}
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return out, nil
}

// Save writes data under key.
func (b *BadgerBackend) Save(_ context.Context, key string, data []byte) error {
	if b.isClosed() {
		return ErrBackendClosed
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (b *BadgerBackend) Delete(_ context.Context, key string) error {
	if b.isClosed() {
		return ErrBackendClosed
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// RunGC reclaims value-log space until badger reports nothing to rewrite.
func (b *BadgerBackend) RunGC() error {
	if b.isClosed() {
		return ErrBackendClosed
	}
	if b.path == "" {
		// in-memory databases have no value log
		return nil
	}
	for {
		err := b.db.RunValueLogGC(DefaultGCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close flushes and closes the database, giving up after closeTimeout.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- b.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("Watchlist store closed")
		return nil
	case <-time.After(closeTimeout):
		logging.Warn().Dur("timeout", closeTimeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", closeTimeout)
	}
}

// GCService runs RunGC on an interval. It implements suture.Service.
type GCService struct {
	backend  *BadgerBackend
	interval time.Duration
}

// NewGCService creates a GC loop for b. A non-positive interval means 10 minutes.
func NewGCService(b *BadgerBackend, interval time.Duration) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GCService{backend: b, interval: interval}
}

// Serve blocks until ctx is done.
func (s *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.backend.RunGC(); err != nil {
				if errors.Is(err, ErrBackendClosed) {
					return err
				}
				logging.Warn().Err(err).Msg("Watchlist value-log GC failed")
				continue
			}
			logging.Debug().Dur("duration", time.Since(start)).Msg("Watchlist value-log GC complete")
		}
	}
}

func (s *GCService) String() string {
	return "watchlist-badger-gc"
}
