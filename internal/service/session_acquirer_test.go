package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	mockauth "github.com/pulse-camp/portal-api/internal/mocks/auth"
	"github.com/pulse-camp/portal-api/internal/ports"
)

func TestSessionAcquirerVerifiedSession(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	acq := NewSessionAcquirer(SessionAcquirerOptions{
		Provider:  provider,
		Snapshots: mockauth.NewMemorySnapshotStore(),
	})

	res, err := acq.Acquire(context.Background(), "key-1", domainauth.Session{AccessToken: "tok"})
	require.NoError(t, err)
	assert.True(t, res.Authenticated)
	assert.False(t, res.Unverified)
	assert.True(t, res.Checked)
	assert.Equal(t, "mock-user-1", res.Session.Identity.ID)
}

func TestSessionAcquirerNoSessionIsNotAnError(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	acq := NewSessionAcquirer(SessionAcquirerOptions{
		Provider:  provider,
		Snapshots: mockauth.NewMemorySnapshotStore(),
	})

	res, err := acq.Acquire(context.Background(), "key-1", domainauth.Session{})
	require.NoError(t, err)
	assert.False(t, res.Authenticated)
	assert.True(t, res.Checked)
}

func TestSessionAcquirerTimeoutFallsBackToSnapshot(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	provider.CurrentSessionFunc = func(ctx context.Context, _ domainauth.Session) (domainauth.Session, error) {
		<-ctx.Done() // never answers in time
		return domainauth.Session{}, ctx.Err()
	}
	snapshots := mockauth.NewMemorySnapshotStore()
	require.NoError(t, snapshots.Save(context.Background(), "key-1", domainauth.Snapshot{
		Authenticated: true,
		Identity:      domainauth.Identity{ID: "user-1"},
		Role:          domainauth.RoleStudent,
	}))

	acq := NewSessionAcquirer(SessionAcquirerOptions{
		Provider:  provider,
		Snapshots: snapshots,
		Timeout:   20 * time.Millisecond,
	})

	res, err := acq.Acquire(context.Background(), "key-1", domainauth.Session{AccessToken: "tok"})
	require.NoError(t, err)
	assert.True(t, res.Authenticated)
	assert.True(t, res.Unverified, "snapshot fallback must be flagged unverified")
	assert.Equal(t, "user-1", res.Snapshot.Identity.ID)
}

func TestSessionAcquirerTimeoutWithoutSnapshotErrors(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	provider.CurrentSessionFunc = func(ctx context.Context, _ domainauth.Session) (domainauth.Session, error) {
		<-ctx.Done()
		return domainauth.Session{}, ctx.Err()
	}
	acq := NewSessionAcquirer(SessionAcquirerOptions{
		Provider:  provider,
		Snapshots: mockauth.NewMemorySnapshotStore(),
		Timeout:   20 * time.Millisecond,
	})

	_, err := acq.Acquire(context.Background(), "key-1", domainauth.Session{AccessToken: "tok"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNetworkOrTimeout, apperrors.GetCode(err))
}

func TestSessionAcquirerSettlesAfterRepeatedFailures(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	provider.CurrentSessionFunc = func(ctx context.Context, _ domainauth.Session) (domainauth.Session, error) {
		<-ctx.Done()
		return domainauth.Session{}, ctx.Err()
	}
	acq := NewSessionAcquirer(SessionAcquirerOptions{
		Provider:  provider,
		Snapshots: mockauth.NewMemorySnapshotStore(),
		Timeout:   10 * time.Millisecond,
	})
	ctx := context.Background()
	stored := domainauth.Session{AccessToken: "tok"}

	for i := 0; i < maxAcquireAttempts-1; i++ {
		_, err := acq.Acquire(ctx, "key-1", stored)
		require.Error(t, err)
	}

	// The final attempt settles to unauthenticated with the check complete.
	res, err := acq.Acquire(ctx, "key-1", stored)
	require.NoError(t, err)
	assert.False(t, res.Authenticated)
	assert.True(t, res.Checked)

	// A success afterwards works again (counter was reset).
	provider.CurrentSessionFunc = nil
	res, err = acq.Acquire(ctx, "key-1", stored)
	require.NoError(t, err)
	assert.True(t, res.Authenticated)
}

func TestSessionAcquirerUnverifiedExpiredSnapshotDoesNotAuthenticate(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	provider.CurrentSessionFunc = func(ctx context.Context, _ domainauth.Session) (domainauth.Session, error) {
		return domainauth.Session{}, ports.ErrNoSession
	}
	snapshots := mockauth.NewMemorySnapshotStore()
	require.NoError(t, snapshots.Save(context.Background(), "key-1", domainauth.Snapshot{
		Authenticated: true,
		Identity:      domainauth.Identity{ID: "user-1"},
	}))

	acq := NewSessionAcquirer(SessionAcquirerOptions{Provider: provider, Snapshots: snapshots})

	// The provider answered definitively: no session. The snapshot must not
	// resurrect authentication.
	res, err := acq.Acquire(context.Background(), "key-1", domainauth.Session{AccessToken: "tok"})
	require.NoError(t, err)
	assert.False(t, res.Authenticated)
}
