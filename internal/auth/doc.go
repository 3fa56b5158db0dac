// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package auth resolves who owns a watchlist.

Every browser gets a profile. Without sign-in that is an anonymous profile
carried in a signed cookie (marquee_profile, an HS256 JWT whose subject is a
random UUID). When sign-in is enabled, users can authenticate through an
external OpenID Connect provider; the relying party is zitadel/oidc and the
provider's verified ID token subject becomes the profile.

Key Components:

  - ProfileManager: issues and verifies the anonymous profile cookie and
    resolves the effective profile for each request
  - Flow: authorization code flow with PKCE and single-use state
  - SessionStore: server-side sessions (MemorySessionStore or
    BadgerSessionStore) referenced by the marquee_session cookie
  - Handlers: /auth/login, /auth/callback, /auth/logout and /auth/me
  - CleanupService: periodic purge of expired sessions and states

The service never validates credentials itself.
*/
package auth
