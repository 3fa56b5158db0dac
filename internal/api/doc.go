// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api provides the HTTP surface of Marquee, routed with go-chi/chi.

Route groups:

	/api/health, /api/health/ready   health and readiness probes
	/metrics                         Prometheus exposition
	/api/movies/*, /api/tv/*,
	/api/genres                      TMDB passthrough proxy
	/api/watchlist/*                 per-profile watchlist (JSON envelope)
	/ws                              watchlist change notifications
	/auth/*                          OIDC sign-in and profile lookup
	/ (pages)                        server-rendered presentation layer

Proxy routes relay the upstream JSON unchanged. Every failure, including a
missing API key, answers with the fixed body {"error": "<message>"}; invalid
parameters answer 400 and upstream or configuration problems answer 500.
Nothing is retried.

Watchlist routes use the models.APIResponse envelope. Storage failures on reads
degrade to empty results; failures on writes answer 500.

Global middleware, outermost first: request ID, real IP, panic recovery,
Prometheus metrics, security headers, CORS. Rate limiting (go-chi/httprate)
and gzip compression are applied per group.
*/
package api
