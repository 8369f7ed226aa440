package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// ProfileRepo provides database operations for user profiles. It implements
// ports.ProfileDirectory plus the admin-facing listing queries.
type ProfileRepo struct {
	Pool *pgxpool.Pool
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{Pool: pool}
}

const profileViewColumns = `id, username, full_name, email, role_id, role_name, COALESCE(avatar_url, '') AS avatar_url, created_at, updated_at`

// ProfileWithRole queries the denormalized profiles_with_roles view.
func (r *ProfileRepo) ProfileWithRole(ctx context.Context, userID string) (domainauth.Profile, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+profileViewColumns+` FROM profiles_with_roles WHERE id = $1`, userID)
	if err != nil {
		return domainauth.Profile{}, apperrors.MapDBError(err)
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[domainauth.Profile])
	if err != nil {
		return domainauth.Profile{}, apperrors.MapDBError(err)
	}
	return p, nil
}

// ProfileByID queries the raw profile row; RoleName is left empty.
func (r *ProfileRepo) ProfileByID(ctx context.Context, userID string) (domainauth.Profile, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, username, full_name, email, role_id, COALESCE(avatar_url, '') AS avatar_url, created_at, updated_at
		FROM profiles WHERE id = $1`, userID)
	if err != nil {
		return domainauth.Profile{}, apperrors.MapDBError(err)
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[domainauth.Profile])
	if err != nil {
		return domainauth.Profile{}, apperrors.MapDBError(err)
	}
	return p, nil
}

// Upsert creates or updates the profile row keyed by identity id.
func (r *ProfileRepo) Upsert(ctx context.Context, p domainauth.Profile) (domainauth.Profile, error) {
	roleID := p.RoleID
	if roleID == 0 {
		roleID = domainauth.RoleIDStudent
	}
	rows, err := r.Pool.Query(ctx, `
		INSERT INTO profiles (id, username, full_name, email, role_id, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			avatar_url = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
			updated_at = now()
		RETURNING id, username, full_name, email, role_id, COALESCE(avatar_url, '') AS avatar_url, created_at, updated_at`,
		p.ID, p.Username, p.FullName, p.Email, roleID, nullIfEmpty(p.AvatarURL))
	if err != nil {
		return domainauth.Profile{}, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[domainauth.Profile])
	if err != nil {
		return domainauth.Profile{}, apperrors.MapDBError(err)
	}
	return out, nil
}

// UpdateOwn updates the fields a user may change on their own profile.
func (r *ProfileRepo) UpdateOwn(ctx context.Context, userID string, username, fullName, avatarURL *string) (domainauth.Profile, error) {
	rows, err := r.Pool.Query(ctx, `
		UPDATE profiles SET
			username = COALESCE($2, username),
			full_name = COALESCE($3, full_name),
			avatar_url = COALESCE($4, avatar_url),
			updated_at = now()
		WHERE id = $1
		RETURNING id, username, full_name, email, role_id, COALESCE(avatar_url, '') AS avatar_url, created_at, updated_at`,
		userID, username, fullName, avatarURL)
	if err != nil {
		return domainauth.Profile{}, apperrors.MapDBError(err)
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[domainauth.Profile])
	if err != nil {
		return domainauth.Profile{}, apperrors.MapDBError(err)
	}
	return p, nil
}

// List returns profiles (with roles) ordered by creation, newest first.
func (r *ProfileRepo) List(ctx context.Context, limit, offset int) ([]domainauth.Profile, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT `+profileViewColumns+` FROM profiles_with_roles
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[domainauth.Profile])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// RoleCount is the number of users holding one role.
type RoleCount struct {
	RoleName string `json:"role_name" db:"role_name"`
	Count    int    `json:"count"     db:"count"`
}

// CountByRole returns per-role user counts for the admin dashboard.
func (r *ProfileRepo) CountByRole(ctx context.Context) ([]RoleCount, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT r.name AS role_name, COUNT(p.id) AS count
		FROM roles r
		LEFT JOIN profiles p ON p.role_id = r.id
		GROUP BY r.name, r.id
		ORDER BY r.id`)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[RoleCount])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// SetRole changes a user's role (admin operation). It keeps user_roles in
// step with the denormalized profiles.role_id.
func (r *ProfileRepo) SetRole(ctx context.Context, userID string, roleID int) error {
	err := pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE profiles SET role_id = $2, updated_at = now() WHERE id = $1`, userID, roleID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, userID, roleID)
		return err
	})
	return apperrors.MapDBError(err)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
