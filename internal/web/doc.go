// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package web renders Marquee's server-side pages from embedded html/template
// files and serves the embedded static assets.
//
// Page data comes from tmdb.Accessor, which never fails: each section is
// fetched concurrently (sourcegraph/conc) and a section whose fetch failed
// renders its empty state without affecting the rest of the page.
//
// Watchlist changes are made with plain form posts that redirect back
// (POST/redirect/GET). Open pages learn about changes made elsewhere through
// the /ws websocket, handled by static/app.js.
package web
