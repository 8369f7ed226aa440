package localauth

// Package localauth is a self-contained identity provider for development and
// tests: bcrypt-hashed accounts in memory, locally signed HS256 sessions, no
// network. It also implements the session issuer used by the SSO flow.

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulse-camp/portal-api/internal/adapters/authevents"
	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	"github.com/pulse-camp/portal-api/internal/ports"
)

const defaultSessionTTL = 8 * time.Hour

type account struct {
	id           string
	email        string
	passwordHash []byte
	metadata     domainauth.Metadata
}

// Provider implements ports.IdentityProvider and ports.SessionIssuer against
// an in-memory account table.
type Provider struct {
	secret     []byte
	sessionTTL time.Duration
	events     authevents.Broadcaster

	mu       sync.RWMutex
	byEmail  map[string]*account
	refresh  map[string]string // refresh token -> account id
}

// Config controls the local provider.
type Config struct {
	// JWTSecret signs issued sessions. Generated when empty.
	JWTSecret string
	// SessionTTL defaults to 8h when zero.
	SessionTTL time.Duration
}

// NewProvider constructs a local provider.
func NewProvider(cfg Config) *Provider {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = defaultSessionTTL
	}
	return &Provider{
		secret:     secret,
		sessionTTL: ttl,
		byEmail:    make(map[string]*account),
		refresh:    make(map[string]string),
	}
}

// Seed registers an account without going through SignUp. Intended for
// bootstrap-time dev fixtures.
func (p *Provider) Seed(email, password string, meta domainauth.Metadata) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byEmail[email]; ok {
		return "", apperrors.Conflict("account already exists")
	}
	acc := &account{
		id:           uuid.NewString(),
		email:        email,
		passwordHash: hash,
		metadata:     meta,
	}
	p.byEmail[email] = acc
	return acc.id, nil
}

// Subscribe implements ports.AuthEventSource.
func (p *Provider) Subscribe() (<-chan domainauth.Event, func()) {
	return p.events.Subscribe()
}

// Close tears down all event subscriptions.
func (p *Provider) Close() { p.events.Close() }

// SignIn authenticates against the in-memory table.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domainauth.Session, error) {
	p.mu.RLock()
	acc, ok := p.byEmail[email]
	p.mu.RUnlock()
	if !ok {
		// Burn a compare so missing and wrong-password cases cost the same.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return domainauth.Session{}, apperrors.InvalidCredentials("invalid login credentials")
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return domainauth.Session{}, apperrors.InvalidCredentials("invalid login credentials")
	}

	sess, err := p.issue(acc.identity(), p.sessionTTL)
	if err != nil {
		return domainauth.Session{}, err
	}
	p.events.Publish(domainauth.Event{Kind: domainauth.EventSignedIn, Session: &sess})
	return sess, nil
}

// SignUp registers a new account and signs it in.
func (p *Provider) SignUp(ctx context.Context, in ports.SignUpInput) (domainauth.Session, error) {
	if in.Email == "" || in.Password == "" {
		return domainauth.Session{}, apperrors.Validation("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	if _, exists := p.byEmail[in.Email]; exists {
		p.mu.Unlock()
		return domainauth.Session{}, apperrors.Conflict("an account with this email already exists")
	}
	acc := &account{
		id:           uuid.NewString(),
		email:        in.Email,
		passwordHash: hash,
		metadata:     in.Metadata,
	}
	p.byEmail[in.Email] = acc
	p.mu.Unlock()

	sess, err := p.issue(acc.identity(), p.sessionTTL)
	if err != nil {
		return domainauth.Session{}, err
	}
	p.events.Publish(domainauth.Event{Kind: domainauth.EventSignedIn, Session: &sess})
	return sess, nil
}

// SignOut revokes the refresh tokens tied to the token's account.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.verify(accessToken)
	if err == nil {
		p.mu.Lock()
		for tok, id := range p.refresh {
			if id == claims.Subject {
				delete(p.refresh, tok)
			}
		}
		p.mu.Unlock()
	}
	p.events.Publish(domainauth.Event{Kind: domainauth.EventSignedOut})
	return nil
}

// CurrentSession re-verifies a session locally, rotating through the refresh
// token when the access token has expired.
func (p *Provider) CurrentSession(ctx context.Context, s domainauth.Session) (domainauth.Session, error) {
	if s.AccessToken == "" {
		return domainauth.Session{}, ports.ErrNoSession
	}
	claims, err := p.verify(s.AccessToken)
	if err == nil {
		s.Identity = claims.identity()
		s.ExpiresAt = claims.ExpiresAt.Time
		s.VerifiedAt = time.Now()
		return s, nil
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return domainauth.Session{}, ports.ErrNoSession
	}

	p.mu.Lock()
	accID, ok := p.refresh[s.RefreshToken]
	if ok {
		delete(p.refresh, s.RefreshToken)
	}
	p.mu.Unlock()
	if !ok {
		return domainauth.Session{}, ports.ErrNoSession
	}

	p.mu.RLock()
	var acc *account
	for _, a := range p.byEmail {
		if a.id == accID {
			acc = a
			break
		}
	}
	p.mu.RUnlock()
	if acc == nil {
		return domainauth.Session{}, ports.ErrNoSession
	}

	sess, err := p.issue(acc.identity(), p.sessionTTL)
	if err != nil {
		return domainauth.Session{}, err
	}
	p.events.Publish(domainauth.Event{Kind: domainauth.EventTokenRefreshed, Session: &sess})
	return sess, nil
}

// Issue implements ports.SessionIssuer: mints a session for an identity
// authenticated elsewhere (SSO callback).
func (p *Provider) Issue(ctx context.Context, identity domainauth.Identity, ttl time.Duration) (domainauth.Session, error) {
	if ttl == 0 {
		ttl = p.sessionTTL
	}
	sess, err := p.issue(identity, ttl)
	if err != nil {
		return domainauth.Session{}, err
	}
	p.events.Publish(domainauth.Event{Kind: domainauth.EventSignedIn, Session: &sess})
	return sess, nil
}

func (p *Provider) issue(identity domainauth.Identity, ttl time.Duration) (domainauth.Session, error) {
	now := time.Now()
	expires := now.Add(ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email:        identity.Email,
		UserMetadata: identity.Metadata,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("sign session token: %w", err)
	}

	refreshToken := randomToken()
	p.mu.Lock()
	p.refresh[refreshToken] = identity.ID
	p.mu.Unlock()

	return domainauth.Session{
		AccessToken:  token,
		RefreshToken: refreshToken,
		Identity:     identity,
		ExpiresAt:    expires,
		VerifiedAt:   now,
	}, nil
}

func (p *Provider) verify(token string) (sessionClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return claims, err
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email        string              `json:"email"`
	UserMetadata domainauth.Metadata `json:"user_metadata"`
}

func (c sessionClaims) identity() domainauth.Identity {
	return domainauth.Identity{ID: c.Subject, Email: c.Email, Metadata: c.UserMetadata}
}

func (a *account) identity() domainauth.Identity {
	return domainauth.Identity{ID: a.id, Email: a.email, Metadata: a.metadata}
}

// dummyHash is a valid bcrypt hash of an unguessable value, used to equalize
// timing on unknown-email sign-ins.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("localauth-timing-pad"), bcrypt.DefaultCost)
	return h
}()

func randomToken() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
