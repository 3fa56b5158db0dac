// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package web

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/marquee/internal/validation"
)

// PaginationWindowSize is the number of page links shown at once.
const PaginationWindowSize = 5

// YearRange is how many years back the year filter reaches.
const YearRange = 50

// CapTotalPages limits a reported page count to what the upstream will serve.
func CapTotalPages(total int) int {
	if total > validation.MaxPage {
		return validation.MaxPage
	}
	if total < 0 {
		return 0
	}
	return total
}

// PaginationWindow returns the page numbers to link around page:
//   - at most 5 pages: all of them
//   - page <= 3: 1..5
//   - page >= total-2: total-4..total
//   - otherwise: page-2..page+2
func PaginationWindow(page, total int) []int {
	if total <= 0 {
		return nil
	}
	var start, end int
	switch {
	case total <= PaginationWindowSize:
		start, end = 1, total
	case page <= 3:
		start, end = 1, PaginationWindowSize
	case page >= total-2:
		start, end = total-PaginationWindowSize+1, total
	default:
		start, end = page-2, page+2
	}
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Greeting picks the dashboard salutation for an hour of the day.
func Greeting(hour int) string {
	switch {
	case hour < 12:
		return "Good morning"
	case hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// FormatRuntime renders minutes as "Xh Ym". Zero or negative is empty.
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// YearOptions lists the filterable years, newest first, from now back YearRange years.
func YearOptions(now time.Time) []int {
	current := now.Year()
	years := make([]int, 0, YearRange+1)
	for y := current; y >= current-YearRange; y-- {
		years = append(years, y)
	}
	return years
}

// FormatRating renders a vote average with one decimal.
func FormatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// yearOf returns the leading year of an upstream date, or "".
func yearOf(date string) string {
	y, _, _ := strings.Cut(date, "-")
	if len(y) != 4 {
		return ""
	}
	return y
}
