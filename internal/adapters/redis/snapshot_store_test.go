package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	"github.com/pulse-camp/portal-api/internal/testutil"
)

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSnapshotStore(SnapshotStoreOptions{Client: client})
	ctx := context.Background()

	snap := domainauth.Snapshot{
		Authenticated: true,
		Identity: domainauth.Identity{
			ID:    "user-123",
			Email: "casey@example.edu",
		},
		Role: domainauth.RoleTeacher,
	}

	require.NoError(t, store.Save(ctx, "sess-abc", snap))

	got, ok, err := store.Load(ctx, "sess-abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Authenticated)
	assert.Equal(t, "user-123", got.Identity.ID)
	assert.Equal(t, domainauth.RoleTeacher, got.Role)
	assert.WithinDuration(t, time.Now(), got.SavedAt, 5*time.Second)
}

func TestSnapshotStore_LoadAbsent(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSnapshotStore(SnapshotStoreOptions{Client: client})

	_, ok, err := store.Load(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotStore_LoadMalformedReturnsNone(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSnapshotStore(SnapshotStoreOptions{Client: client})
	ctx := context.Background()

	// Write garbage directly under the store's key.
	require.NoError(t, client.Set(ctx, "authstate:sess-bad", "{not json", time.Minute).Err())

	_, ok, err := store.Load(ctx, "sess-bad")
	require.NoError(t, err)
	assert.False(t, ok)

	// The malformed record is dropped, not retained.
	exists, err := client.Exists(ctx, "authstate:sess-bad").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestSnapshotStore_Clear(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSnapshotStore(SnapshotStoreOptions{Client: client})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-gone", domainauth.Snapshot{Authenticated: true}))
	require.NoError(t, store.Clear(ctx, "sess-gone"))

	_, ok, err := store.Load(ctx, "sess-gone")
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing an empty key is a no-op.
	assert.NoError(t, store.Clear(ctx, ""))
}

func TestSnapshotStore_EmptyKey(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSnapshotStore(SnapshotStoreOptions{Client: client})

	assert.Error(t, store.Save(context.Background(), "", domainauth.Snapshot{}))

	_, ok, err := store.Load(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoleCache_RoundTrip(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	cache := NewRoleCache(RoleCacheOptions{Client: client})
	ctx := context.Background()

	require.NoError(t, cache.SaveRole(ctx, "user-1", domainauth.RoleAdmin))

	role, ok := cache.LoadRole(ctx, "user-1")
	assert.True(t, ok)
	assert.Equal(t, domainauth.RoleAdmin, role)

	require.NoError(t, cache.ClearRole(ctx, "user-1"))
	_, ok = cache.LoadRole(ctx, "user-1")
	assert.False(t, ok)
}

func TestRoleCache_InvalidValueIsMiss(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	cache := NewRoleCache(RoleCacheOptions{Client: client})
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "userrole:user-2", "superuser", time.Minute).Err())

	_, ok := cache.LoadRole(ctx, "user-2")
	assert.False(t, ok)
}
