// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides HTTP middleware shared by the API and page routes.

All middleware here has the form func(http.HandlerFunc) http.HandlerFunc; the
router adapts them for chi's r.Use.

Key Components:

  - RequestID: accepts or generates X-Request-ID and seeds the logging context
  - PrometheusMetrics: request counts, durations and in-flight gauge, labelled
    by chi route pattern so ids never become label values
  - Compression: gzip for clients that accept it (websocket upgrades excluded)
  - SecurityHeaders: nosniff, frame denial, referrer policy, CSP admitting the
    configured image CDN origin, and HSTS behind TLS

Typical order, outermost first:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(chiMiddleware(middleware.SecurityHeaders(cfg.TMDB.ImageBaseURL)))
	r.Use(chiMiddleware(middleware.Compression))
*/
package middleware
