package oidcsso

// Package oidcsso completes OIDC logins against the institution's identity
// provider. It only produces a verified SSOIdentity; minting the portal
// session from it is the session issuer's job.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/pulse-camp/portal-api/internal/ports"
)

// Provider implements ports.SSOProvider over go-oidc.
type Provider struct {
	oauth    *oauth2.Config
	verifier *gooidc.IDTokenVerifier
	provider *gooidc.Provider
}

// ProviderConfig holds configuration for the institutional OIDC provider.
type ProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Scopes defaults to "openid profile email groups" when empty.
	Scopes     string
	HTTPClient *http.Client
}

// NewProvider performs OIDC discovery against the issuer and builds the
// provider. A single discovery fetch happens at construction.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}
	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scopes)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email", "groups"}
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		provider: op,
	}, nil
}

// Begin starts the login flow: returns the provider auth URL plus fresh state
// and nonce for the caller to stash in the login transaction.
func (p *Provider) Begin(_ context.Context, redirectURL string) (string, string, string, error) {
	if redirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomURLString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomURLString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// idClaims is the standard-claims subset the portal reads from the ID token.
type idClaims struct {
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Groups     []string `json:"groups"`
	Nonce      string   `json:"nonce"`
}

// Exchange completes the login flow: exchanges the code, verifies the ID
// token against the expected nonce, and fills missing claims from userinfo.
func (p *Provider) Exchange(ctx context.Context, in ports.SSOExchangeInput) (ports.SSOIdentity, error) {
	if in.Code == "" {
		return ports.SSOIdentity{}, errors.New("authorization code is required")
	}
	if in.Nonce == "" {
		return ports.SSOIdentity{}, errors.New("nonce is required")
	}

	token, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return ports.SSOIdentity{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return ports.SSOIdentity{}, errors.New("token response missing id_token")
	}
	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return ports.SSOIdentity{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims idClaims
	if err := idToken.Claims(&claims); err != nil {
		return ports.SSOIdentity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if claims.Nonce != in.Nonce {
		return ports.SSOIdentity{}, errors.New("nonce mismatch")
	}

	identity := ports.SSOIdentity{
		Subject:    idToken.Subject,
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Groups:     claims.Groups,
		ExpiresAt:  idToken.Expiry,
	}
	if identity.ExpiresAt.IsZero() {
		identity.ExpiresAt = time.Now().Add(time.Hour)
	}

	// Some providers omit profile claims from the ID token.
	if identity.Email == "" || identity.GivenName == "" {
		p.fillFromUserInfo(ctx, token.AccessToken, &identity)
	}
	if identity.Subject == "" {
		return ports.SSOIdentity{}, errors.New("identity provider returned no subject")
	}
	return identity, nil
}

type userInfoClaims struct {
	Subject    string   `json:"sub"`
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Groups     []string `json:"groups"`
}

func (p *Provider) fillFromUserInfo(ctx context.Context, accessToken string, identity *ports.SSOIdentity) {
	ui, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return
	}
	var claims userInfoClaims
	if err := ui.Claims(&claims); err != nil {
		return
	}
	if identity.Email == "" {
		identity.Email = claims.Email
	}
	if identity.GivenName == "" {
		identity.GivenName = claims.GivenName
	}
	if identity.FamilyName == "" {
		identity.FamilyName = claims.FamilyName
	}
	if len(identity.Groups) == 0 {
		identity.Groups = claims.Groups
	}
}

// randomURLString returns a cryptographically secure URL-safe string of the
// exact requested length.
func randomURLString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, (length*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
