// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"net/http"
	"net/url"
)

// ContentSecurityPolicy allows first-party scripts and styles plus poster
// images from imageOrigin. An empty origin limits images to self and data URIs.
func ContentSecurityPolicy(imageOrigin string) string {
	img := "img-src 'self' "
	if imageOrigin != "" {
		img += imageOrigin + " "
	}
	return "default-src 'self'; " +
		img + "data:; " +
		"style-src 'self'; " +
		"script-src 'self'; " +
		"connect-src 'self'; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'"
}

// ImageOrigin reduces an image base URL such as https://image.tmdb.org/t/p
// to its scheme://host origin. Relative or malformed URLs yield "".
func ImageOrigin(imageBaseURL string) string {
	u, err := url.Parse(imageBaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// SecurityHeaders returns middleware that sets response hardening headers,
// admitting poster images from the origin of imageBaseURL. HSTS is added only
// when the request arrived over TLS (directly or via X-Forwarded-Proto).
func SecurityHeaders(imageBaseURL string) func(http.HandlerFunc) http.HandlerFunc {
	csp := ContentSecurityPolicy(ImageOrigin(imageBaseURL))
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next(w, r)
		}
	}
}
