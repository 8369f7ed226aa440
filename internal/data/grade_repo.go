package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// GradeRepo provides database operations for GPA tracker entries.
type GradeRepo struct {
	Pool *pgxpool.Pool
}

// NewGradeRepo creates a new GradeRepo.
func NewGradeRepo(pool *pgxpool.Pool) *GradeRepo {
	return &GradeRepo{Pool: pool}
}

const gradeColumns = `id, user_id, course_name, credits, grade, grade_points, created_at`

// Create inserts a grade entry, deriving the grade points server-side.
func (r *GradeRepo) Create(ctx context.Context, userID string, req *model.CreateGradeEntryRequest) (model.GradeEntry, error) {
	if err := req.Validate(); err != nil {
		return model.GradeEntry{}, apperrors.Validation(err.Error())
	}
	points, _ := model.GradePoints(req.Grade)
	rows, err := r.Pool.Query(ctx, `
		INSERT INTO grade_entries (user_id, course_name, credits, grade, grade_points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+gradeColumns,
		userID, req.CourseName, req.Credits, req.Grade, points)
	if err != nil {
		return model.GradeEntry{}, apperrors.MapDBError(err)
	}
	e, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.GradeEntry])
	if err != nil {
		return model.GradeEntry{}, apperrors.MapDBError(err)
	}
	return e, nil
}

// List returns the user's grade entries in insertion order.
func (r *GradeRepo) List(ctx context.Context, userID string) ([]model.GradeEntry, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+gradeColumns+` FROM grade_entries WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.GradeEntry])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Delete removes the user's own grade entry.
func (r *GradeRepo) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM grade_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("grade entry not found")
	}
	return nil
}
