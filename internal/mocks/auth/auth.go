package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	"github.com/pulse-camp/portal-api/internal/adapters/authevents"
	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	"github.com/pulse-camp/portal-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider     = (*MockIdentityProvider)(nil)
	_ ports.AuthEventSource      = (*MockIdentityProvider)(nil)
	_ ports.SessionSnapshotStore = (*MemorySnapshotStore)(nil)
	_ ports.RoleCache            = (*MemoryRoleCache)(nil)
	_ ports.ProfileDirectory     = (*MockProfileDirectory)(nil)
)

// MockIdentityProvider simulates the hosted identity provider. Zero value is
// unusable; construct with NewMockIdentityProvider. Override the *Func fields
// to script behavior; unset funcs fall back to the in-memory session table.
type MockIdentityProvider struct {
	SignInFunc         func(ctx context.Context, email, password string) (domainauth.Session, error)
	SignUpFunc         func(ctx context.Context, in ports.SignUpInput) (domainauth.Session, error)
	SignOutFunc        func(ctx context.Context, accessToken string) error
	CurrentSessionFunc func(ctx context.Context, s domainauth.Session) (domainauth.Session, error)

	// DefaultSession is returned by unscripted SignIn/CurrentSession calls.
	DefaultSession domainauth.Session
	// Password accepted by the unscripted SignIn. Empty accepts anything.
	Password string

	Events authevents.Broadcaster

	mu              sync.Mutex
	signInCalls     int
	signOutCalls    int
	currentCalls    int
	lastSignUpInput ports.SignUpInput
}

// NewMockIdentityProvider creates a provider with a plausible default session.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultSession: domainauth.Session{
			AccessToken:  "mock-access-token",
			RefreshToken: "mock-refresh-token",
			Identity: domainauth.Identity{
				ID:    "mock-user-1",
				Email: "mock.user@pulsecamp.app",
				Metadata: domainauth.Metadata{
					Username: "mockuser",
					FullName: "Mock User",
					RoleID:   domainauth.RoleIDStudent,
				},
			},
			ExpiresAt:  time.Now().Add(time.Hour),
			VerifiedAt: time.Now(),
		},
	}
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (domainauth.Session, error) {
	m.mu.Lock()
	m.signInCalls++
	m.mu.Unlock()
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	if m.Password != "" && password != m.Password {
		return domainauth.Session{}, apperrors.InvalidCredentials("invalid login credentials")
	}
	sess := m.DefaultSession
	sess.Identity.Email = email
	m.Events.Publish(domainauth.Event{Kind: domainauth.EventSignedIn, Session: &sess})
	return sess, nil
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, in ports.SignUpInput) (domainauth.Session, error) {
	m.mu.Lock()
	m.lastSignUpInput = in
	m.mu.Unlock()
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, in)
	}
	sess := m.DefaultSession
	sess.Identity.Email = in.Email
	sess.Identity.Metadata = in.Metadata
	m.Events.Publish(domainauth.Event{Kind: domainauth.EventSignedIn, Session: &sess})
	return sess, nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, accessToken string) error {
	m.mu.Lock()
	m.signOutCalls++
	m.mu.Unlock()
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, accessToken)
	}
	m.Events.Publish(domainauth.Event{Kind: domainauth.EventSignedOut})
	return nil
}

func (m *MockIdentityProvider) CurrentSession(ctx context.Context, s domainauth.Session) (domainauth.Session, error) {
	m.mu.Lock()
	m.currentCalls++
	m.mu.Unlock()
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx, s)
	}
	if s.AccessToken == "" {
		return domainauth.Session{}, ports.ErrNoSession
	}
	return m.DefaultSession, nil
}

func (m *MockIdentityProvider) Subscribe() (<-chan domainauth.Event, func()) {
	return m.Events.Subscribe()
}

// SignInCalls reports how many times SignIn was invoked.
func (m *MockIdentityProvider) SignInCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signInCalls
}

// SignOutCalls reports how many times SignOut was invoked.
func (m *MockIdentityProvider) SignOutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOutCalls
}

// CurrentSessionCalls reports how many times CurrentSession was invoked.
func (m *MockIdentityProvider) CurrentSessionCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentCalls
}

// LastSignUpInput returns the most recent SignUp input.
func (m *MockIdentityProvider) LastSignUpInput() ports.SignUpInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSignUpInput
}

// MemorySnapshotStore is an in-memory ports.SessionSnapshotStore.
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domainauth.Snapshot

	// SaveErr/LoadErr/ClearErr force failures when set.
	SaveErr  error
	LoadErr  error
	ClearErr error
}

// NewMemorySnapshotStore creates an empty store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snapshots: make(map[string]domainauth.Snapshot)}
}

func (s *MemorySnapshotStore) Save(_ context.Context, key string, snap domainauth.Snapshot) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}
	s.snapshots[key] = snap
	return nil
}

func (s *MemorySnapshotStore) Load(_ context.Context, key string) (domainauth.Snapshot, bool, error) {
	if s.LoadErr != nil {
		return domainauth.Snapshot{}, false, s.LoadErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[key]
	return snap, ok, nil
}

func (s *MemorySnapshotStore) Clear(_ context.Context, key string) error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, key)
	return nil
}

// Len reports the number of stored snapshots.
func (s *MemorySnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// MemoryRoleCache is an in-memory ports.RoleCache.
type MemoryRoleCache struct {
	mu    sync.RWMutex
	roles map[string]domainauth.Role
}

// NewMemoryRoleCache creates an empty cache.
func NewMemoryRoleCache() *MemoryRoleCache {
	return &MemoryRoleCache{roles: make(map[string]domainauth.Role)}
}

func (c *MemoryRoleCache) SaveRole(_ context.Context, userID string, role domainauth.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[userID] = role
	return nil
}

func (c *MemoryRoleCache) LoadRole(_ context.Context, userID string) (domainauth.Role, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	role, ok := c.roles[userID]
	return role, ok
}

func (c *MemoryRoleCache) ClearRole(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.roles, userID)
	return nil
}

// MockProfileDirectory scripts the relational profile lookups.
type MockProfileDirectory struct {
	ProfileWithRoleFunc func(ctx context.Context, userID string) (domainauth.Profile, error)
	ProfileByIDFunc     func(ctx context.Context, userID string) (domainauth.Profile, error)
	UpsertFunc          func(ctx context.Context, p domainauth.Profile) (domainauth.Profile, error)

	mu            sync.Mutex
	viewCalls     int
	rowCalls      int
	upsertedRows  []domainauth.Profile
}

func (d *MockProfileDirectory) ProfileWithRole(ctx context.Context, userID string) (domainauth.Profile, error) {
	d.mu.Lock()
	d.viewCalls++
	d.mu.Unlock()
	if d.ProfileWithRoleFunc != nil {
		return d.ProfileWithRoleFunc(ctx, userID)
	}
	return domainauth.Profile{}, apperrors.NotFound("profile not found")
}

func (d *MockProfileDirectory) ProfileByID(ctx context.Context, userID string) (domainauth.Profile, error) {
	d.mu.Lock()
	d.rowCalls++
	d.mu.Unlock()
	if d.ProfileByIDFunc != nil {
		return d.ProfileByIDFunc(ctx, userID)
	}
	return domainauth.Profile{}, apperrors.NotFound("profile not found")
}

func (d *MockProfileDirectory) Upsert(ctx context.Context, p domainauth.Profile) (domainauth.Profile, error) {
	d.mu.Lock()
	d.upsertedRows = append(d.upsertedRows, p)
	d.mu.Unlock()
	if d.UpsertFunc != nil {
		return d.UpsertFunc(ctx, p)
	}
	return p, nil
}

// ViewCalls reports how many times the profiles-with-roles view was queried.
func (d *MockProfileDirectory) ViewCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewCalls
}

// RowCalls reports how many times the raw profile row was queried.
func (d *MockProfileDirectory) RowCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rowCalls
}

// Upserted returns a copy of the upserted profiles in call order.
func (d *MockProfileDirectory) Upserted() []domainauth.Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domainauth.Profile, len(d.upsertedRows))
	copy(out, d.upsertedRows)
	return out
}
