// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
)

// ErrTokenExchangeFailed wraps failures at the provider's token endpoint,
// including ID tokens the relying party refused to verify.
var ErrTokenExchangeFailed = errors.New("token exchange failed")

// Identity is the verified result of a sign-in.
type Identity struct {
	Subject  string
	Username string
	Email    string
	IDToken  string

	PostLoginRedirect string
}

// Flow drives the authorization code flow against one provider. Discovery,
// JWKS and ID token verification are delegated to the zitadel relying party.
type Flow struct {
	rp         rp.RelyingParty
	states     StateStore
	pkce       bool
	stateTTL   time.Duration
	postLogout string
}

// NewFlow performs provider discovery and returns a ready flow. ctx bounds
// the discovery request only.
func NewFlow(ctx context.Context, cfg *config.OIDCConfig, states StateStore) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("issuer_url is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}
	if cfg.RedirectURL == "" {
		return nil, fmt.Errorf("redirect_url is required")
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}
	}
	if !slices.Contains(scopes, oidc.ScopeOpenID) {
		return nil, fmt.Errorf("scopes must include 'openid'")
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		scopes,
		rp.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("create relying party: %w", err)
	}

	if states == nil {
		states = NewMemoryStateStore()
	}

	return &Flow{
		rp:         relyingParty,
		states:     states,
		pkce:       cfg.PKCEEnabled,
		stateTTL:   DefaultStateTTL,
		postLogout: cfg.PostLogoutRedirectURI,
	}, nil
}

// AuthorizationURL creates single-use state (and a PKCE verifier when
// enabled) and returns the provider URL to send the browser to.
func (f *Flow) AuthorizationURL(ctx context.Context, postLoginRedirect string) (string, error) {
	stateKey, err := generateSecureRandom(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	data := &StateData{
		PostLoginRedirect: postLoginRedirect,
		ExpiresAt:         time.Now().Add(f.stateTTL),
	}

	var opts []rp.AuthURLOpt
	if f.pkce {
		verifier, err := generateSecureRandom(32)
		if err != nil {
			return "", fmt.Errorf("generate code verifier: %w", err)
		}
		data.CodeVerifier = verifier
		opts = append(opts, rp.WithCodeChallenge(oidc.NewSHACodeChallenge(verifier)))
	}

	if err := f.states.Store(ctx, stateKey, data); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}

	logging.Ctx(ctx).Debug().
		Str("state", stateKey[:8]+"...").
		Bool("pkce", f.pkce).
		Msg("Generated OIDC authorization URL")

	return rp.AuthURL(stateKey, f.rp, opts...), nil
}

// HandleCallback consumes state, exchanges code and returns the verified
// identity.
func (f *Flow) HandleCallback(ctx context.Context, code, state string) (*Identity, error) {
	data, err := f.states.Consume(ctx, state)
	if err != nil {
		return nil, err
	}

	var opts []rp.CodeExchangeOpt
	if data.CodeVerifier != "" {
		opts = append(opts, rp.WithCodeVerifier(data.CodeVerifier))
	}

	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, f.rp, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchangeFailed, err)
	}
	if tokens.IDTokenClaims == nil || tokens.IDTokenClaims.Subject == "" {
		return nil, fmt.Errorf("%w: no subject in ID token", ErrTokenExchangeFailed)
	}

	claims := tokens.IDTokenClaims
	id := &Identity{
		Subject:           claims.Subject,
		Username:          firstNonEmpty(claims.PreferredUsername, claims.Name, claims.Email),
		Email:             claims.Email,
		IDToken:           tokens.IDToken,
		PostLoginRedirect: data.PostLoginRedirect,
	}

	logging.Ctx(ctx).Info().
		Str("user", logging.SanitizeLogValue(id.Username)).
		Msg("OIDC sign-in successful")

	return id, nil
}

// LogoutURL returns the provider's end-session URL, or "" when the provider
// does not support RP-initiated logout.
func (f *Flow) LogoutURL(idTokenHint string) string {
	endpoint := f.rp.GetEndSessionEndpoint()
	if endpoint == "" {
		return ""
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	params := u.Query()
	if idTokenHint != "" {
		params.Set("id_token_hint", idTokenHint)
	}
	if f.postLogout != "" {
		params.Set("post_logout_redirect_uri", f.postLogout)
	}
	u.RawQuery = params.Encode()
	return u.String()
}

// PostLogoutRedirect is where local logout lands when the provider cannot
// end its own session.
func (f *Flow) PostLogoutRedirect() string {
	return f.postLogout
}

// States exposes the state store for cleanup.
func (f *Flow) States() StateStore {
	return f.states
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
