package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"authgate/core"
)

const defaultGoogleIssuer = "https://accounts.google.com"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// IssuerURL defaults to the public Google issuer; tests point it at a
	// local mock.
	IssuerURL string
	Timeout   time.Duration
}

// GoogleProvider exchanges authorization codes with Google and verifies
// the returned ID token against Google's published signing keys before
// trusting any claim.
type GoogleProvider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	httpClient  *http.Client
}

// NewGoogleProvider runs OIDC discovery against the configured issuer and
// builds the code-exchange client and ID token verifier.
func NewGoogleProvider(ctx context.Context, config *GoogleConfig) (*GoogleProvider, error) {
	if config.ClientID == "" || config.ClientSecret == "" || config.RedirectURI == "" {
		return nil, fmt.Errorf("google oauth config missing required fields")
	}

	issuer := config.IssuerURL
	if issuer == "" {
		issuer = defaultGoogleIssuer
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	oidcProvider, err := oidc.NewProvider(oidc.ClientContext(ctx, httpClient), issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURI,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &GoogleProvider{
		oauthConfig: oauthConfig,
		verifier: oidcProvider.Verifier(&oidc.Config{
			ClientID: config.ClientID,
		}),
		httpClient: httpClient,
	}, nil
}

// Exchange submits the code to Google's token endpoint and extracts
// verified identity claims from the ID token. The audience check against
// our client id happens inside the verifier; an assertion that fails
// verification is never decoded for claims.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*core.IdentityClaims, error) {
	ctx = oidc.ClientContext(ctx, g.httpClient)

	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrExchangeFailed, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: provider response missing id_token", core.ErrExchangeFailed)
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: id_token verification: %v", core.ErrExchangeFailed, err)
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: id_token claims: %v", core.ErrExchangeFailed, err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: id_token missing required claims", core.ErrExchangeFailed)
	}

	return &core.IdentityClaims{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Picture:   claims.Picture,
		ExpiresAt: idToken.Expiry,
	}, nil
}
