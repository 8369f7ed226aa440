package gotrue

// Package gotrue is the client for the hosted authentication collaborator.
// The portal never stores credentials or owns sessions; it exchanges them for
// provider-issued JWT sessions and re-verifies those locally where possible.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pulse-camp/portal-api/internal/adapters/authevents"
	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	"github.com/pulse-camp/portal-api/internal/ports"
)

const defaultTimeout = 15 * time.Second

// Client talks to a GoTrue-style hosted auth service.
type Client struct {
	baseURL    string
	apiKey     string
	jwtSecret  []byte
	httpClient *http.Client
	logger     *slog.Logger
	events     authevents.Broadcaster
}

// Config holds configuration for the hosted auth client.
type Config struct {
	// BaseURL is the auth service root, e.g. "https://auth.pulsecamp.app".
	BaseURL string
	// APIKey is the service's anon key sent on every request.
	APIKey string
	// JWTSecret verifies provider-issued access tokens locally, avoiding a
	// network round trip on every session check.
	JWTSecret string
	// HTTPClient is optional; a 15s-timeout client is used when nil.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a hosted auth client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("auth base URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth JWT secret is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		jwtSecret:  []byte(cfg.JWTSecret),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Subscribe implements ports.AuthEventSource.
func (c *Client) Subscribe() (<-chan domainauth.Event, func()) {
	return c.events.Subscribe()
}

// Close tears down all event subscriptions.
func (c *Client) Close() { c.events.Close() }

// SignIn authenticates with email/password and returns a verified session.
func (c *Client) SignIn(ctx context.Context, email, password string) (domainauth.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.post(ctx, "/token?grant_type=password", body, &resp); err != nil {
		return domainauth.Session{}, err
	}
	sess := resp.session(time.Now())
	c.events.Publish(domainauth.Event{Kind: domainauth.EventSignedIn, Session: &sess})
	return sess, nil
}

// SignUp creates a new identity carrying the given metadata.
func (c *Client) SignUp(ctx context.Context, in ports.SignUpInput) (domainauth.Session, error) {
	body := map[string]any{
		"email":    in.Email,
		"password": in.Password,
		"data":     in.Metadata,
	}
	var resp tokenResponse
	if err := c.post(ctx, "/signup", body, &resp); err != nil {
		return domainauth.Session{}, err
	}
	sess := resp.session(time.Now())
	c.events.Publish(domainauth.Event{Kind: domainauth.EventSignedIn, Session: &sess})
	return sess, nil
}

// SignOut invalidates the provider-side session for the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportErr(err)
	}
	defer drainAndClose(resp.Body)

	// 401 on logout means the session is already gone; that is fine.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusUnauthorized {
		return c.errorFromResponse(resp)
	}
	c.events.Publish(domainauth.Event{Kind: domainauth.EventSignedOut})
	return nil
}

// CurrentSession re-verifies a previously issued session. Tokens still inside
// their validity window verify locally against the shared JWT secret; expired
// tokens are refreshed with the provider. Returns ports.ErrNoSession when the
// provider reports no live session.
func (c *Client) CurrentSession(ctx context.Context, s domainauth.Session) (domainauth.Session, error) {
	if s.AccessToken == "" {
		return domainauth.Session{}, ports.ErrNoSession
	}

	claims, err := c.verifyToken(s.AccessToken)
	if err == nil {
		s.Identity = claims.identity()
		s.ExpiresAt = claims.ExpiresAt.Time
		s.VerifiedAt = time.Now()
		return s, nil
	}

	if !errors.Is(err, jwt.ErrTokenExpired) {
		c.logger.Debug("access token rejected", "error", err)
		return domainauth.Session{}, ports.ErrNoSession
	}

	return c.refresh(ctx, s.RefreshToken)
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (domainauth.Session, error) {
	if refreshToken == "" {
		return domainauth.Session{}, ports.ErrNoSession
	}
	body := map[string]string{"refresh_token": refreshToken}
	var resp tokenResponse
	if err := c.post(ctx, "/token?grant_type=refresh_token", body, &resp); err != nil {
		// An auth-level rejection means the session is dead, not that the
		// network failed.
		if apperrors.IsInvalidCredentials(err) || apperrors.IsPermission(err) {
			return domainauth.Session{}, ports.ErrNoSession
		}
		return domainauth.Session{}, err
	}
	sess := resp.session(time.Now())
	c.events.Publish(domainauth.Event{Kind: domainauth.EventTokenRefreshed, Session: &sess})
	return sess, nil
}

// --- wire types ---

type userPayload struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	UserMetadata domainauth.Metadata `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         userPayload `json:"user"`
}

func (r tokenResponse) session(now time.Time) domainauth.Session {
	return domainauth.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		Identity: domainauth.Identity{
			ID:       r.User.ID,
			Email:    r.User.Email,
			Metadata: r.User.UserMetadata,
		},
		ExpiresAt:  now.Add(time.Duration(r.ExpiresIn) * time.Second),
		VerifiedAt: now,
	}
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Message     string `json:"msg"`
}

// accessClaims is the subset of provider JWT claims the portal reads.
type accessClaims struct {
	jwt.RegisteredClaims
	Email        string              `json:"email"`
	UserMetadata domainauth.Metadata `json:"user_metadata"`
}

func (a accessClaims) identity() domainauth.Identity {
	return domainauth.Identity{
		ID:       a.Subject,
		Email:    a.Email,
		Metadata: a.UserMetadata,
	}
}

func (c *Client) verifyToken(token string) (accessClaims, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return claims, err
}

// --- transport helpers ---

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	return req, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal auth request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportErr(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnknown, "decode auth response")
	}
	return nil
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	var er errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&er)
	msg := er.Description
	if msg == "" {
		msg = er.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	cause := fmt.Errorf("auth service: %s (status %d)", msg, resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusBadRequest && er.Error == "invalid_grant",
		resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Wrap(cause, apperrors.ErrCodeInvalidCredentials, msg)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Wrap(cause, apperrors.ErrCodePermission, msg)
	case resp.StatusCode == http.StatusUnprocessableEntity,
		resp.StatusCode == http.StatusBadRequest:
		return apperrors.Wrap(cause, apperrors.ErrCodeValidation, msg)
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Wrap(cause, apperrors.ErrCodeConflict, msg)
	default:
		return apperrors.Wrap(cause, apperrors.ErrCodeUnknown, msg)
	}
}

func classifyTransportErr(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && (uerr.Timeout() || errors.Is(err, context.DeadlineExceeded)) {
		return apperrors.Wrap(err, apperrors.ErrCodeNetworkOrTimeout, "auth service timed out")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeNetworkOrTimeout, "auth service unreachable")
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<16))
	_ = body.Close()
}
