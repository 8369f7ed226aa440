package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
)

// ErrNoSession is returned by IdentityProvider.CurrentSession when the
// provider reports no live session. This is a signal, not a failure: the
// acquirer treats it as "signed out", never as a transport error.
var ErrNoSession = errors.New("no session")

// SignUpInput carries inputs for creating a new identity with the provider.
type SignUpInput struct {
	Email    string
	Password string
	Metadata domainauth.Metadata
}

// IdentityProvider is the hosted authentication collaborator. It owns sessions;
// the application only holds cached copies.
type IdentityProvider interface {
	// SignIn authenticates with email/password and returns a verified session.
	SignIn(ctx context.Context, email, password string) (domainauth.Session, error)

	// SignUp creates a new identity carrying the given metadata and returns the
	// initial session.
	SignUp(ctx context.Context, in SignUpInput) (domainauth.Session, error)

	// SignOut invalidates the provider-side session for the given access token.
	SignOut(ctx context.Context, accessToken string) error

	// CurrentSession re-verifies a previously issued session, refreshing tokens
	// when necessary. Returns ErrNoSession when the provider reports no live
	// session for it.
	CurrentSession(ctx context.Context, s domainauth.Session) (domainauth.Session, error)
}

// AuthEventSource delivers provider auth-change notifications for the lifetime
// of a subscription. The returned cancel function tears the subscription down.
type AuthEventSource interface {
	Subscribe() (<-chan domainauth.Event, func())
}

// SessionSnapshotStore persists the last known auth state as a degraded
// fallback for provider outages. Load treats malformed payloads as absent.
type SessionSnapshotStore interface {
	Save(ctx context.Context, key string, snap domainauth.Snapshot) error
	// Load returns the snapshot and whether one was present. Malformed records
	// are logged and reported as absent, never as errors.
	Load(ctx context.Context, key string) (domainauth.Snapshot, bool, error)
	Clear(ctx context.Context, key string) error
}

// RoleCache holds resolved roles as an availability shortcut. Entries are
// advisory and superseded whenever a fresh profile is obtained.
type RoleCache interface {
	SaveRole(ctx context.Context, userID string, role domainauth.Role) error
	// LoadRole returns the cached role and whether a valid entry was present.
	LoadRole(ctx context.Context, userID string) (domainauth.Role, bool)
	ClearRole(ctx context.Context, userID string) error
}

// SessionIssuer mints portal sessions for identities authenticated outside
// the password flow (institutional SSO).
type SessionIssuer interface {
	Issue(ctx context.Context, identity domainauth.Identity, ttl time.Duration) (domainauth.Session, error)
}

// SSOExchangeInput groups parameters for the SSO code/token exchange.
type SSOExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SSOIdentity carries the claims returned by the institutional identity
// provider before they are mapped onto a portal identity.
type SSOIdentity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Groups     []string
	ExpiresAt  time.Time
}

// SSOProvider initiates and completes an OIDC login flow against the
// institution's identity provider.
type SSOProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque
	// state, and a nonce.
	Begin(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce.
	Exchange(ctx context.Context, in SSOExchangeInput) (SSOIdentity, error)
}

// GroupRoleMapper maps SSO directory groups to portal roles.
type GroupRoleMapper interface {
	Map(groups []string) domainauth.Role
}

// ProfileDirectory is the relational collaborator's view of user profiles.
type ProfileDirectory interface {
	// ProfileWithRole queries the denormalized profile-with-role view.
	ProfileWithRole(ctx context.Context, userID string) (domainauth.Profile, error)
	// ProfileByID queries the raw profile row.
	ProfileByID(ctx context.Context, userID string) (domainauth.Profile, error)
	// Upsert creates or updates the profile row keyed by identity id.
	Upsert(ctx context.Context, p domainauth.Profile) (domainauth.Profile, error)
}
