package data

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// GroupRepo provides database operations for study groups and memberships.
type GroupRepo struct {
	Pool *pgxpool.Pool
}

// NewGroupRepo creates a new GroupRepo.
func NewGroupRepo(pool *pgxpool.Pool) *GroupRepo {
	return &GroupRepo{Pool: pool}
}

const groupColumns = `id, name, description, created_by, invite_code, created_at`

// Create inserts a study group and enrolls the creator as the first member.
func (r *GroupRepo) Create(ctx context.Context, userID string, req *model.CreateStudyGroupRequest) (model.StudyGroup, error) {
	if err := req.Validate(); err != nil {
		return model.StudyGroup{}, apperrors.Validation(err.Error())
	}

	var created model.StudyGroup
	err := pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO study_groups (name, description, created_by, invite_code)
			VALUES ($1, $2, $3, $4)
			RETURNING `+groupColumns,
			req.Name, req.Description, userID, newInviteCode())
		if err != nil {
			return err
		}
		created, err = pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.StudyGroup])
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO study_group_members (group_id, user_id) VALUES ($1, $2)`,
			created.ID, userID)
		return err
	})
	if err != nil {
		return model.StudyGroup{}, apperrors.MapDBError(err)
	}
	created.MemberCount = 1
	return created, nil
}

// List returns all study groups with member counts, newest first.
func (r *GroupRepo) List(ctx context.Context) ([]model.StudyGroup, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT g.id, g.name, g.description, g.created_by, g.invite_code, g.created_at,
		       COUNT(m.user_id) AS member_count
		FROM study_groups g
		LEFT JOIN study_group_members m ON m.group_id = g.id
		GROUP BY g.id
		ORDER BY g.created_at DESC`)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.StudyGroup])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Join adds a membership row. Joining twice is a conflict.
func (r *GroupRepo) Join(ctx context.Context, groupID int64, userID string) error {
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO study_group_members (group_id, user_id) VALUES ($1, $2)`,
		groupID, userID)
	return apperrors.MapDBError(err)
}

// JoinByInvite resolves an invite code and adds the membership.
func (r *GroupRepo) JoinByInvite(ctx context.Context, inviteCode, userID string) (model.StudyGroup, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+groupColumns+` FROM study_groups WHERE invite_code = $1`, inviteCode)
	if err != nil {
		return model.StudyGroup{}, apperrors.MapDBError(err)
	}
	group, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.StudyGroup])
	if err != nil {
		return model.StudyGroup{}, apperrors.MapDBError(err)
	}
	if err := r.Join(ctx, group.ID, userID); err != nil {
		return model.StudyGroup{}, err
	}
	return group, nil
}

// Leave removes a membership row.
func (r *GroupRepo) Leave(ctx context.Context, groupID int64, userID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM study_group_members WHERE group_id = $1 AND user_id = $2`,
		groupID, userID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("membership not found")
	}
	return nil
}

// Members lists a group's membership rows.
func (r *GroupRepo) Members(ctx context.Context, groupID int64) ([]model.StudyGroupMember, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT group_id, user_id, joined_at
		FROM study_group_members WHERE group_id = $1 ORDER BY joined_at`, groupID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.StudyGroupMember])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// newInviteCode returns a short random invite code.
func newInviteCode() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
