package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	mockauth "github.com/pulse-camp/portal-api/internal/mocks/auth"
	"github.com/pulse-camp/portal-api/internal/ports"
)

type managerFixture struct {
	provider  *mockauth.MockIdentityProvider
	snapshots *mockauth.MemorySnapshotStore
	roles     *mockauth.MemoryRoleCache
	directory *mockauth.MockProfileDirectory
	manager   *AuthManager
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	provider := mockauth.NewMockIdentityProvider()
	snapshots := mockauth.NewMemorySnapshotStore()
	roles := mockauth.NewMemoryRoleCache()
	directory := &mockauth.MockProfileDirectory{
		ProfileWithRoleFunc: func(_ context.Context, id string) (domainauth.Profile, error) {
			return domainauth.Profile{ID: id, Username: "mockuser", RoleName: "student", RoleID: 3}, nil
		},
	}
	acquirer := NewSessionAcquirer(SessionAcquirerOptions{
		Provider:  provider,
		Snapshots: snapshots,
		Timeout:   200 * time.Millisecond,
	})
	resolver := NewRoleResolver(RoleResolverOptions{Profiles: directory, Roles: roles})
	manager := NewAuthManager(AuthManagerOptions{
		Provider:  provider,
		Acquirer:  acquirer,
		Resolver:  resolver,
		Snapshots: snapshots,
		Roles:     roles,
		Profiles:  directory,
	})
	return &managerFixture{
		provider:  provider,
		snapshots: snapshots,
		roles:     roles,
		directory: directory,
		manager:   manager,
	}
}

func TestAuthManagerStateVerifiedSession(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	view := f.manager.State(ctx, "key-1", domainauth.Session{AccessToken: "tok"})
	assert.True(t, view.SessionChecked)
	assert.True(t, view.Authenticated)
	assert.False(t, view.Loading)
	assert.False(t, view.Unverified)
	assert.Equal(t, domainauth.RoleStudent, view.Role)
	assert.True(t, view.ProfileLoaded)

	// The verified result is snapshotted for future degraded starts.
	snap, ok, err := f.snapshots.Load(ctx, "key-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, snap.Authenticated)
	assert.Equal(t, "mock-user-1", snap.Identity.ID)
}

func TestAuthManagerStateChecksOnce(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	stored := domainauth.Session{AccessToken: "tok"}

	_ = f.manager.State(ctx, "key-1", stored)
	_ = f.manager.State(ctx, "key-1", stored)
	_ = f.manager.State(ctx, "key-1", stored)

	assert.Equal(t, 1, f.provider.CurrentSessionCalls(),
		"the session check must run exactly once until invalidated")
}

func TestAuthManagerConcurrentStateSharesOneCheck(t *testing.T) {
	f := newManagerFixture(t)
	release := make(chan struct{})
	f.provider.CurrentSessionFunc = func(context.Context, domainauth.Session) (domainauth.Session, error) {
		<-release
		return f.provider.DefaultSession, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.manager.State(context.Background(), "key-1", domainauth.Session{AccessToken: "tok"})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, f.provider.CurrentSessionCalls())
}

func TestAuthManagerStateNoSession(t *testing.T) {
	f := newManagerFixture(t)

	view := f.manager.State(context.Background(), "key-1", domainauth.Session{})
	assert.True(t, view.SessionChecked)
	assert.False(t, view.Authenticated)
	assert.False(t, view.Loading)
}

func TestAuthManagerAnonymousKeysAreNotRetained(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	// Cookie-less clients mint a fresh key every request; none of them may
	// stick in the state table.
	for i := 0; i < 50; i++ {
		view := f.manager.State(ctx, fmt.Sprintf("one-shot-%d", i), domainauth.Session{})
		require.True(t, view.SessionChecked)
		require.False(t, view.Authenticated)
	}
	assert.Zero(t, f.manager.stateCount())

	// A key that presented tokens is retained even when they fail
	// verification, so its completed check is reused.
	f.provider.CurrentSessionFunc = func(context.Context, domainauth.Session) (domainauth.Session, error) {
		return domainauth.Session{}, ports.ErrNoSession
	}
	view := f.manager.State(ctx, "key-stale", domainauth.Session{AccessToken: "stale"})
	assert.True(t, view.SessionChecked)
	assert.False(t, view.Authenticated)
	assert.Equal(t, 1, f.manager.stateCount())
}

func TestAuthManagerSignOutEvictsStateEntry(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	_, err := f.manager.SignIn(ctx, "key-1", "x@pulsecamp.app", "anything")
	require.NoError(t, err)
	require.Equal(t, 1, f.manager.stateCount())

	require.NoError(t, f.manager.SignOut(ctx, "key-1"))
	assert.Zero(t, f.manager.stateCount())
}

func TestAuthManagerRestoreIsOptimisticAndUnverified(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.snapshots.Save(ctx, "key-1", domainauth.Snapshot{
		Authenticated: true,
		Identity:      domainauth.Identity{ID: "user-1"},
		Role:          domainauth.RoleTeacher,
	}))

	view := f.manager.Restore(ctx, "key-1")
	assert.True(t, view.Authenticated)
	assert.True(t, view.Unverified)
	assert.False(t, view.SessionChecked, "restore must not count as the session check")
	assert.Equal(t, domainauth.RoleTeacher, view.Role)
	assert.Zero(t, f.provider.CurrentSessionCalls(), "restore never touches the network")
}

func TestAuthManagerSignIn(t *testing.T) {
	f := newManagerFixture(t)
	f.provider.Password = "correct"
	ctx := context.Background()

	t.Run("failure leaves state untouched", func(t *testing.T) {
		_, err := f.manager.SignIn(ctx, "key-1", "x@pulsecamp.app", "wrong")
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidCredentials(err))

		view := f.manager.State(ctx, "key-1", domainauth.Session{})
		assert.False(t, view.Authenticated)
	})

	t.Run("success authenticates and resolves", func(t *testing.T) {
		view, err := f.manager.SignIn(ctx, "key-1", "x@pulsecamp.app", "correct")
		require.NoError(t, err)
		assert.True(t, view.Authenticated)
		assert.True(t, view.SessionChecked)
		assert.Equal(t, domainauth.RoleStudent, view.Role)
		assert.True(t, view.ProfileLoaded)
	})

	t.Run("missing fields are validation errors", func(t *testing.T) {
		_, err := f.manager.SignIn(ctx, "key-1", "", "")
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestAuthManagerSignUp(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	view, err := f.manager.SignUp(ctx, "key-1", SignUpInput{
		Email:    "new@pulsecamp.app",
		Password: "secret-123",
		Username: "newbie",
		FullName: "New Student",
	})
	require.NoError(t, err)
	assert.True(t, view.Authenticated)

	// Metadata passed to the provider defaults the role id to student.
	assert.Equal(t, domainauth.RoleIDStudent, f.provider.LastSignUpInput().Metadata.RoleID)

	// The profile row was created.
	rows := f.directory.Upserted()
	require.Len(t, rows, 1)
	assert.Equal(t, "newbie", rows[0].Username)
	assert.Equal(t, domainauth.RoleIDStudent, rows[0].RoleID)
}

func TestAuthManagerSignUpProfileFailureIsNotFatal(t *testing.T) {
	f := newManagerFixture(t)
	f.directory.UpsertFunc = func(context.Context, domainauth.Profile) (domainauth.Profile, error) {
		return domainauth.Profile{}, errors.New("profiles table unavailable")
	}

	// The identity exists even though the profile write failed; the user is
	// signed in and the row is repaired on a later resolution pass.
	view, err := f.manager.SignUp(context.Background(), "key-1", SignUpInput{
		Email:    "new@pulsecamp.app",
		Password: "secret-123",
	})
	require.NoError(t, err)
	assert.True(t, view.Authenticated)
}

func TestAuthManagerSignOutClearsCachesBeforeProviderCall(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	_, err := f.manager.SignIn(ctx, "key-1", "x@pulsecamp.app", "anything")
	require.NoError(t, err)
	_, ok := f.roles.LoadRole(ctx, "mock-user-1")
	require.True(t, ok)

	var clearedFirst bool
	f.provider.SignOutFunc = func(context.Context, string) error {
		_, snapPresent, _ := f.snapshots.Load(ctx, "key-1")
		_, rolePresent := f.roles.LoadRole(ctx, "mock-user-1")
		clearedFirst = !snapPresent && !rolePresent
		return errors.New("provider unreachable")
	}

	err = f.manager.SignOut(ctx, "key-1")
	require.Error(t, err, "provider failure still surfaces for logging")
	assert.True(t, clearedFirst, "caches must be cleared before the network call")

	view := f.manager.State(ctx, "key-1", domainauth.Session{})
	assert.False(t, view.Authenticated)
	assert.True(t, view.SessionChecked)
}

func TestAuthManagerRefreshProfile(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	_, err := f.manager.SignIn(ctx, "key-1", "x@pulsecamp.app", "anything")
	require.NoError(t, err)

	f.directory.ProfileWithRoleFunc = func(_ context.Context, id string) (domainauth.Profile, error) {
		return domainauth.Profile{ID: id, Username: "renamed", RoleName: "teacher", RoleID: 2}, nil
	}

	view, err := f.manager.RefreshProfile(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", view.Profile.Username)
	assert.Equal(t, domainauth.RoleTeacher, view.Role)

	t.Run("requires a session", func(t *testing.T) {
		_, err := f.manager.RefreshProfile(ctx, "other-key")
		assert.True(t, apperrors.IsInvalidCredentials(err))
	})
}

func TestAuthManagerConcurrentRefreshSharesOneFetch(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	_, err := f.manager.SignIn(ctx, "key-1", "x@pulsecamp.app", "anything")
	require.NoError(t, err)
	base := f.directory.ViewCalls()

	release := make(chan struct{})
	f.directory.ProfileWithRoleFunc = func(_ context.Context, id string) (domainauth.Profile, error) {
		<-release
		return domainauth.Profile{ID: id, Username: "mockuser", RoleName: "student", RoleID: 3}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.manager.RefreshProfile(ctx, "key-1")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, f.directory.ViewCalls()-base,
		"concurrent refreshes for one user must share a single directory fetch")
}

func TestAuthManagerEventInvalidatesCheck(t *testing.T) {
	f := newManagerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.manager.Run(ctx)
	}()
	time.Sleep(20 * time.Millisecond) // let Run subscribe

	stored := domainauth.Session{AccessToken: "tok"}
	_ = f.manager.State(ctx, "key-1", stored)
	require.Equal(t, 1, f.provider.CurrentSessionCalls())

	f.provider.Events.Publish(domainauth.Event{Kind: domainauth.EventSignedOut})
	require.Eventually(t, func() bool {
		return f.manager.State(ctx, "key-1", stored).SessionChecked &&
			f.provider.CurrentSessionCalls() > 1
	}, time.Second, 10*time.Millisecond, "an auth-change event must force a re-check")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}

func TestAuthManagerRepeatedCheckFailuresEventuallySettle(t *testing.T) {
	f := newManagerFixture(t)
	f.provider.CurrentSessionFunc = func(ctx context.Context, _ domainauth.Session) (domainauth.Session, error) {
		<-ctx.Done()
		return domainauth.Session{}, ctx.Err()
	}
	ctx := context.Background()
	stored := domainauth.Session{AccessToken: "tok"}

	// Early failures keep the state in loading so callers retry.
	view := f.manager.State(ctx, "key-1", stored)
	assert.False(t, view.SessionChecked)
	assert.True(t, view.Loading)

	// Attempts are bounded: the final one settles unauthenticated with the
	// check reported complete.
	view = f.manager.State(ctx, "key-1", stored)
	view = f.manager.State(ctx, "key-1", stored)
	assert.True(t, view.SessionChecked)
	assert.False(t, view.Authenticated)
	assert.False(t, view.Loading)
}

func TestAuthManagerSnapshotFallbackState(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.snapshots.Save(ctx, "key-1", domainauth.Snapshot{
		Authenticated: true,
		Identity:      domainauth.Identity{ID: "user-1"},
		Profile:       domainauth.Profile{ID: "user-1", Username: "cached"},
		Role:          domainauth.RoleStudent,
	}))
	f.provider.CurrentSessionFunc = func(ctx context.Context, _ domainauth.Session) (domainauth.Session, error) {
		<-ctx.Done()
		return domainauth.Session{}, ctx.Err()
	}

	view := f.manager.State(ctx, "key-1", domainauth.Session{AccessToken: "tok"})
	assert.True(t, view.Authenticated)
	assert.True(t, view.Unverified)
	assert.Equal(t, "cached", view.Profile.Username)
}

var _ ports.AuthEventSource = (*mockauth.MockIdentityProvider)(nil)
