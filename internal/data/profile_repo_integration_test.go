package data

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	"github.com/pulse-camp/portal-api/internal/migrate"
	"github.com/pulse-camp/portal-api/internal/testutil"
)

// seedProfile inserts a fresh profile with a random identity so tests can run
// repeatedly against a shared database.
func seedProfile(t *testing.T, repo *ProfileRepo, roleID int) domainauth.Profile {
	t.Helper()

	id := uuid.NewString()
	p, err := repo.Upsert(context.Background(), domainauth.Profile{
		ID:       id,
		Username: "u-" + id[:8],
		FullName: "Test User",
		Email:    fmt.Sprintf("%s@pulsecamp.test", id[:8]),
		RoleID:   roleID,
	})
	require.NoError(t, err)
	return p
}

func TestProfileRepoUpsertAndLookup(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	repo := NewProfileRepo(pool)
	ctx := context.Background()

	p := seedProfile(t, repo, domainauth.RoleIDTeacher)

	t.Run("view row carries the role name", func(t *testing.T) {
		got, err := repo.ProfileWithRole(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Username, got.Username)
		assert.Equal(t, domainauth.RoleIDTeacher, got.RoleID)
		assert.Equal(t, "teacher", got.RoleName)
	})

	t.Run("raw row leaves role name empty", func(t *testing.T) {
		got, err := repo.ProfileByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleIDTeacher, got.RoleID)
		assert.Empty(t, got.RoleName)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.ProfileWithRole(ctx, uuid.NewString())
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("upsert is idempotent on id and keeps avatar", func(t *testing.T) {
		withAvatar := p
		withAvatar.AvatarURL = "https://cdn.pulsecamp.test/a.png"
		_, err := repo.Upsert(ctx, withAvatar)
		require.NoError(t, err)

		withAvatar.AvatarURL = ""
		withAvatar.FullName = "Renamed User"
		got, err := repo.Upsert(ctx, withAvatar)
		require.NoError(t, err)
		assert.Equal(t, "Renamed User", got.FullName)
		assert.Equal(t, "https://cdn.pulsecamp.test/a.png", got.AvatarURL)
	})
}

func TestProfileRepoSetRole(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	repo := NewProfileRepo(pool)
	ctx := context.Background()

	p := seedProfile(t, repo, 0) // defaults to student

	got, err := repo.ProfileWithRole(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "student", got.RoleName)

	require.NoError(t, repo.SetRole(ctx, p.ID, domainauth.RoleIDAdmin))

	got, err = repo.ProfileWithRole(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.RoleName)

	err = repo.SetRole(ctx, uuid.NewString(), domainauth.RoleIDAdmin)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProfileRepoUpdateOwn(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	repo := NewProfileRepo(pool)
	ctx := context.Background()

	p := seedProfile(t, repo, domainauth.RoleIDStudent)

	name := "New Name"
	got, err := repo.UpdateOwn(ctx, p.ID, nil, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.FullName)
	assert.Equal(t, p.Username, got.Username, "unset fields stay put")
}
