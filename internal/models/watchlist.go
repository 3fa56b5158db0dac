// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import "time"

// WatchlistEntry is a saved movie plus the time it was added.
// Entries are created on add and removed on remove/clear; they are never
// otherwise mutated.
type WatchlistEntry struct {
	Movie
	AddedAt time.Time `json:"addedAt"`
}
