// Package sso translates third-party-verified identity assertions into local
// sessions.
package sso

import (
	"context"
	"fmt"

	"savornshare/internal/config"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// Identity is the subset of a verified ID-token payload the bridge needs.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier verifies a raw third-party ID token and extracts the
// identity it asserts. Implementations must fail closed: no identity is
// returned unless the signature and audience check out.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, rawIDToken string) (*Identity, error)
}

// GoogleProvider verifies Google ID tokens and drives the redirect flow.
type GoogleProvider struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

// NewGoogleProvider discovers Google's OIDC configuration and builds a
// verifier bound to the configured client ID.
func NewGoogleProvider(ctx context.Context, cfg *config.Config) (*GoogleProvider, error) {
	if cfg.GoogleClientID == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID is required for federated login")
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.GoogleClientID})

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &GoogleProvider{
		verifier:     verifier,
		oauth2Config: oauth2Config,
	}, nil
}

// AuthCodeURL returns the Google authorization URL for the redirect flow.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

// ExchangeCode swaps an authorization code for the raw ID token embedded in
// the token response.
func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	oauth2Token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return "", fmt.Errorf("missing id_token in token response")
	}
	return rawIDToken, nil
}

// VerifyIDToken checks the token's signature and audience against Google and
// extracts the asserted identity.
func (p *GoogleProvider) VerifyIDToken(ctx context.Context, rawIDToken string) (*Identity, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("ID token carries no email claim")
	}

	return &Identity{
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
