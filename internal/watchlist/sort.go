// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package watchlist

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tomtom215/marquee/internal/models"
)

// Sort orders.
const (
	SortRecent = "recent"
	SortTitle  = "title"
	SortRating = "rating"
	SortYear   = "year"
)

// SortOptions lists the orders offered by the watchlist page, in display order.
var SortOptions = []struct {
	Value string
	Label string
}{
	{SortRecent, "Recently Added"},
	{SortTitle, "Title"},
	{SortRating, "Rating"},
	{SortYear, "Release Year"},
}

// ValidSort reports whether by is a known order.
func ValidSort(by string) bool {
	switch by {
	case SortRecent, SortTitle, SortRating, SortYear:
		return true
	}
	return false
}

// Sort returns a sorted copy of entries. Ties keep their stored order.
// Unknown orders fall back to SortRecent.
func Sort(entries []models.WatchlistEntry, by string) []models.WatchlistEntry {
	out := make([]models.WatchlistEntry, len(entries))
	copy(out, entries)

	var less func(i, j int) bool
	switch by {
	case SortTitle:
		// Collators keep scratch buffers, so one per call.
		c := collate.New(language.English)
		less = func(i, j int) bool {
			return c.CompareString(out[i].Title, out[j].Title) < 0
		}
	case SortRating:
		less = func(i, j int) bool {
			return out[i].VoteAverage > out[j].VoteAverage
		}
	case SortYear:
		less = func(i, j int) bool {
			return out[i].ReleaseYear() > out[j].ReleaseYear()
		}
	default:
		less = func(i, j int) bool {
			return out[i].AddedAt.After(out[j].AddedAt)
		}
	}
	sort.SliceStable(out, less)
	return out
}
