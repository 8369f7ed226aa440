package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	"github.com/pulse-camp/portal-api/internal/ports"
)

// AuthManagerOptions groups dependencies for AuthManager.
type AuthManagerOptions struct {
	Provider  ports.IdentityProvider
	Acquirer  *SessionAcquirer
	Resolver  *RoleResolver
	Snapshots ports.SessionSnapshotStore
	Roles     ports.RoleCache
	Profiles  ports.ProfileDirectory
	Logger    *slog.Logger
}

// AuthManager owns the auth state machine for each user-agent session:
// Uninitialized -> Checking -> {Authenticated, Unauthenticated}, with the
// profile loading as a sub-step of Authenticated. One manager serves all
// sessions; state is keyed by the opaque cache key the browser carries.
type AuthManager struct {
	provider  ports.IdentityProvider
	acquirer  *SessionAcquirer
	resolver  *RoleResolver
	snapshots ports.SessionSnapshotStore
	roles     ports.RoleCache
	profiles  ports.ProfileDirectory
	logger    *slog.Logger

	checkGroup   singleflight.Group
	profileGroup singleflight.Group

	mu     sync.RWMutex
	states map[string]*authState
}

type authState struct {
	checking       bool
	sessionChecked bool
	authenticated  bool
	unverified     bool
	profileLoaded  bool
	identity       domainauth.Identity
	profile        domainauth.Profile
	role           domainauth.Role
	session        domainauth.Session
}

// AuthStateView is a read-only copy of one session's auth state.
type AuthStateView struct {
	Loading        bool
	SessionChecked bool
	Authenticated  bool
	// Unverified marks state restored from a persisted snapshot that could
	// not be confirmed with the identity provider.
	Unverified    bool
	ProfileLoaded bool
	Identity      domainauth.Identity
	Profile       domainauth.Profile
	Role          domainauth.Role
	Session       domainauth.Session
}

// NewAuthManager constructs a new AuthManager.
func NewAuthManager(opts AuthManagerOptions) *AuthManager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthManager{
		provider:  opts.Provider,
		acquirer:  opts.Acquirer,
		resolver:  opts.Resolver,
		snapshots: opts.Snapshots,
		roles:     opts.Roles,
		profiles:  opts.Profiles,
		logger:    logger,
		states:    make(map[string]*authState),
	}
}

// Run consumes provider auth-change events until ctx is done. Each event
// invalidates every session's checked flag so the next State call re-enters
// checking. Intended to run once per process.
func (m *AuthManager) Run(ctx context.Context) {
	source, ok := m.provider.(ports.AuthEventSource)
	if !ok {
		<-ctx.Done()
		return
	}
	events, cancel := source.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			m.handleEvent(ctx, ev)
		}
	}
}

func (m *AuthManager) handleEvent(ctx context.Context, ev domainauth.Event) {
	m.logger.Debug("auth change event", "kind", ev.Kind)
	switch ev.Kind {
	case domainauth.EventSignedOut, domainauth.EventUserDeleted:
		m.invalidateAll()
	case domainauth.EventSignedIn, domainauth.EventTokenRefreshed:
		// Token material changed; force re-verification on next access.
		m.invalidateAll()
	}
}

func (m *AuthManager) invalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, st := range m.states {
		st.sessionChecked = false
		// Previously verified state is provisional until the re-check lands.
		st.unverified = st.authenticated
		m.checkGroup.Forget(key)
	}
}

// State returns the auth state for key, running the session check first if it
// has not completed. Stored carries the browser's last known tokens (zero
// when none). Concurrent callers share one check via single-flight.
// SessionChecked is true on every return after the first completed check and
// stays true until an auth-change event or an explicit sign-in/out.
func (m *AuthManager) State(ctx context.Context, key string, stored domainauth.Session) AuthStateView {
	if st, ok := m.lookup(key); ok && st.sessionChecked {
		return m.view(key)
	}

	_, _, _ = m.checkGroup.Do(key, func() (any, error) {
		m.check(ctx, key, stored)
		return nil, nil
	})
	if _, ok := m.lookup(key); !ok {
		// The key settled unauthenticated without ever presenting tokens and
		// was not retained; report the completed check.
		return AuthStateView{SessionChecked: true}
	}
	return m.view(key)
}

// Restore performs the synchronous optimistic restore from the persisted
// snapshot: state becomes provisionally authenticated (unverified) without
// touching the network. A later State call still runs the real check, and a
// key whose state is already live is returned as-is.
func (m *AuthManager) Restore(ctx context.Context, key string) AuthStateView {
	if st, ok := m.lookup(key); ok && (st.sessionChecked || st.authenticated) {
		return m.view(key)
	}
	snap, ok, err := m.snapshots.Load(ctx, key)
	if err != nil {
		m.logger.Warn("optimistic restore failed", "error", err)
		ok = false
	}
	if ok && snap.Authenticated {
		m.update(key, func(st *authState) {
			st.authenticated = true
			st.unverified = true
			st.identity = snap.Identity
			st.profile = snap.Profile
			st.profileLoaded = snap.Profile.ID != ""
			st.role = snap.Role
			st.checking = true
		})
	}
	return m.view(key)
}

// check runs one acquisition + resolution pass and settles the state.
func (m *AuthManager) check(ctx context.Context, key string, stored domainauth.Session) {
	m.update(key, func(st *authState) { st.checking = true })

	res, err := m.acquirer.Acquire(ctx, key, stored)
	if err != nil {
		// Leave the check incomplete so the next State call retries. The
		// acquirer bounds the attempts and settles the final one itself.
		m.logger.Warn("session check failed", "error", err)
		m.update(key, func(st *authState) { st.checking = false })
		m.checkGroup.Forget(key)
		return
	}

	switch {
	case !res.Authenticated:
		// The provider definitively reported no session, so any snapshot for
		// this key is stale.
		if clearErr := m.snapshots.Clear(ctx, key); clearErr != nil {
			m.logger.Warn("snapshot clear failed", "error", clearErr)
		}
		m.settleUnauthenticated(key, stored.AccessToken == "" && stored.RefreshToken == "")

	case res.Unverified:
		// Snapshot fallback: trust it for availability, flag it.
		m.update(key, func(st *authState) {
			st.checking = false
			st.sessionChecked = true
			st.authenticated = true
			st.unverified = true
			st.identity = res.Snapshot.Identity
			st.profile = res.Snapshot.Profile
			st.profileLoaded = res.Snapshot.Profile.ID != ""
			st.role = res.Snapshot.Role
		})

	default:
		m.adoptSession(ctx, key, res.Session)
	}
}

// adoptSession installs a verified session: resolve role and profile, settle
// the state machine, persist the snapshot.
func (m *AuthManager) adoptSession(ctx context.Context, key string, sess domainauth.Session) {
	resolved := m.resolver.Resolve(ctx, sess.Identity)

	m.update(key, func(st *authState) {
		st.checking = false
		st.sessionChecked = true
		st.authenticated = true
		st.unverified = false
		st.identity = sess.Identity
		st.session = sess
		st.role = resolved.Role
		st.profile = resolved.Profile
		st.profileLoaded = resolved.ProfileLoaded
	})

	if err := m.snapshots.Save(ctx, key, domainauth.Snapshot{
		Authenticated: true,
		Identity:      sess.Identity,
		Profile:       resolved.Profile,
		Role:          resolved.Role,
		SavedAt:       time.Now(),
	}); err != nil {
		m.logger.Warn("snapshot save failed", "error", err)
	}
}

// Adopt installs an externally minted session (institutional SSO) as the
// state for key, resolving role and profile the same way a sign-in does.
func (m *AuthManager) Adopt(ctx context.Context, key string, sess domainauth.Session) AuthStateView {
	m.adoptSession(ctx, key, sess)
	return m.view(key)
}

// settleUnauthenticated completes the check with no session. When evict is
// set the entry is dropped from the state table entirely; cookie-less clients
// mint a fresh key per request, and each retained entry would otherwise live
// for the process lifetime.
func (m *AuthManager) settleUnauthenticated(key string, evict bool) {
	if evict {
		m.mu.Lock()
		delete(m.states, key)
		m.mu.Unlock()
		return
	}
	m.update(key, func(st *authState) {
		*st = authState{sessionChecked: true}
	})
}

// SignIn authenticates with the provider. On success the state machine enters
// Authenticated with role and profile resolved; on failure the previous state
// is left untouched and a classified error is returned.
func (m *AuthManager) SignIn(ctx context.Context, key, email, password string) (AuthStateView, error) {
	if email == "" || password == "" {
		return m.view(key), apperrors.Validation("email and password are required")
	}
	sess, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return m.view(key), fmt.Errorf("sign in: %w", err)
	}
	m.adoptSession(ctx, key, sess)
	return m.view(key), nil
}

// SignUpInput carries the portal-level sign-up form.
type SignUpInput struct {
	Email    string
	Password string
	Username string
	FullName string
	RoleID   int
}

// SignUp creates the identity with the provider, then upserts the profile
// row. A profile failure after the identity exists is logged, not rolled
// back; the missing row is repaired by the next sign-in's resolution pass.
func (m *AuthManager) SignUp(ctx context.Context, key string, in SignUpInput) (AuthStateView, error) {
	if in.Email == "" || in.Password == "" {
		return m.view(key), apperrors.Validation("email and password are required")
	}
	roleID := in.RoleID
	if roleID == 0 {
		roleID = domainauth.RoleIDStudent
	}

	sess, err := m.provider.SignUp(ctx, ports.SignUpInput{
		Email:    in.Email,
		Password: in.Password,
		Metadata: domainauth.Metadata{
			Username: in.Username,
			FullName: in.FullName,
			RoleID:   roleID,
		},
	})
	if err != nil {
		return m.view(key), fmt.Errorf("sign up: %w", err)
	}

	if _, upsertErr := m.profiles.Upsert(ctx, domainauth.Profile{
		ID:       sess.Identity.ID,
		Username: in.Username,
		FullName: in.FullName,
		Email:    in.Email,
		RoleID:   roleID,
	}); upsertErr != nil {
		m.logger.Error("profile creation failed after identity creation; will repair on next sign-in",
			"user_id", sess.Identity.ID, "error", upsertErr)
	}

	m.adoptSession(ctx, key, sess)
	return m.view(key), nil
}

// SignOut clears the persisted snapshot, the role cache, and the in-memory
// state before the provider call, so locally visible state is gone regardless
// of network outcome. The provider error, if any, is returned for logging.
func (m *AuthManager) SignOut(ctx context.Context, key string) error {
	st, _ := m.lookup(key)
	var accessToken, userID string
	if st != nil {
		accessToken = st.session.AccessToken
		userID = st.identity.ID
	}

	if err := m.snapshots.Clear(ctx, key); err != nil {
		m.logger.Warn("snapshot clear failed", "error", err)
	}
	if userID != "" {
		if err := m.roles.ClearRole(ctx, userID); err != nil {
			m.logger.Warn("role cache clear failed", "error", err)
		}
		m.profileGroup.Forget(userID)
	}
	m.settleUnauthenticated(key, true)
	m.checkGroup.Forget(key)

	if accessToken == "" {
		return nil
	}
	if err := m.provider.SignOut(ctx, accessToken); err != nil {
		return fmt.Errorf("provider sign out: %w", err)
	}
	return nil
}

// RefreshProfile re-resolves profile and role for the session's user.
// Idempotent; concurrent refreshes for the same user share one directory
// round trip.
func (m *AuthManager) RefreshProfile(ctx context.Context, key string) (AuthStateView, error) {
	st, ok := m.lookup(key)
	if !ok || !st.authenticated {
		return m.view(key), apperrors.InvalidCredentials("not signed in")
	}
	identity := st.identity

	v, err, _ := m.profileGroup.Do(identity.ID, func() (any, error) {
		return m.resolver.Resolve(ctx, identity), nil
	})
	if err != nil {
		return m.view(key), err
	}
	resolved := v.(ResolveResult)

	m.update(key, func(st *authState) {
		st.role = resolved.Role
		if resolved.ProfileLoaded {
			st.profile = resolved.Profile
			st.profileLoaded = true
		}
	})

	if err := m.snapshots.Save(ctx, key, domainauth.Snapshot{
		Authenticated: true,
		Identity:      identity,
		Profile:       resolved.Profile,
		Role:          resolved.Role,
		SavedAt:       time.Now(),
	}); err != nil {
		m.logger.Warn("snapshot save failed", "error", err)
	}
	return m.view(key), nil
}

// --- state table plumbing ---

func (m *AuthManager) lookup(key string) (*authState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[key]
	if !ok {
		return nil, false
	}
	cp := *st
	return &cp, true
}

func (m *AuthManager) stateCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

func (m *AuthManager) update(key string, fn func(*authState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[key]
	if !ok {
		st = &authState{}
		m.states[key] = st
	}
	fn(st)
}

func (m *AuthManager) view(key string) AuthStateView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[key]
	if !ok {
		return AuthStateView{Loading: true}
	}
	// An optimistically restored state is renderable while its check runs;
	// only a state with nothing to show reports loading.
	loading := (st.checking || !st.sessionChecked) && !(st.authenticated && st.unverified)
	return AuthStateView{
		Loading:        loading,
		SessionChecked: st.sessionChecked,
		Authenticated:  st.authenticated,
		Unverified:     st.unverified,
		ProfileLoaded:  st.profileLoaded,
		Identity:       st.identity,
		Profile:        st.profile,
		Role:           st.role,
		Session:        st.session,
	}
}
