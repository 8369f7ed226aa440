package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// CourseRepo provides database operations for courses and their materials.
type CourseRepo struct {
	Pool *pgxpool.Pool
}

// NewCourseRepo creates a new CourseRepo.
func NewCourseRepo(pool *pgxpool.Pool) *CourseRepo {
	return &CourseRepo{Pool: pool}
}

const courseColumns = `id, name, description, public, created_by, instructor_id, created_at, updated_at`

// Create inserts a new course with the creator as instructor.
func (r *CourseRepo) Create(ctx context.Context, userID string, req *model.CreateCourseRequest) (model.Course, error) {
	if err := req.Validate(); err != nil {
		return model.Course{}, apperrors.Validation(err.Error())
	}
	public := true
	if req.Public != nil {
		public = *req.Public
	}
	rows, err := r.Pool.Query(ctx, `
		INSERT INTO courses (name, description, public, created_by, instructor_id)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+courseColumns,
		req.Name, req.Description, public, userID)
	if err != nil {
		return model.Course{}, apperrors.MapDBError(err)
	}
	c, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.Course])
	if err != nil {
		return model.Course{}, apperrors.MapDBError(err)
	}
	return c, nil
}

// Get returns one course.
func (r *CourseRepo) Get(ctx context.Context, id int64) (model.Course, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	if err != nil {
		return model.Course{}, apperrors.MapDBError(err)
	}
	c, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.Course])
	if err != nil {
		return model.Course{}, apperrors.MapDBError(err)
	}
	return c, nil
}

// List returns public courses plus the caller's own, newest first.
func (r *CourseRepo) List(ctx context.Context, userID string) ([]model.Course, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+courseColumns+` FROM courses
		WHERE public OR created_by = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Course])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// ListForStudent returns the courses a student is involved in: any course
// that has handed them an assignment.
func (r *CourseRepo) ListForStudent(ctx context.Context, studentID string) ([]model.Course, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT DISTINCT c.id, c.name, c.description, c.public, c.created_by, c.instructor_id, c.created_at, c.updated_at
		FROM courses c
		JOIN assignments a ON a.course_id = c.id
		JOIN assignment_recipients ar ON ar.assignment_id = a.id
		WHERE ar.student_id = $1
		ORDER BY c.created_at DESC`, studentID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Course])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Update applies an UpdateCourseRequest. Only the course creator may update.
func (r *CourseRepo) Update(ctx context.Context, id int64, userID string, req *model.UpdateCourseRequest) (model.Course, error) {
	if err := req.Validate(); err != nil {
		return model.Course{}, apperrors.Validation(err.Error())
	}
	rows, err := r.Pool.Query(ctx, `
		UPDATE courses SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			public = COALESCE($5, public),
			updated_at = now()
		WHERE id = $1 AND created_by = $2
		RETURNING `+courseColumns,
		id, userID, req.Name, req.Description, req.Public)
	if err != nil {
		return model.Course{}, apperrors.MapDBError(err)
	}
	c, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.Course])
	if err != nil {
		return model.Course{}, apperrors.MapDBError(err)
	}
	return c, nil
}

// Delete removes a course. Only the course creator may delete.
func (r *CourseRepo) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM courses WHERE id = $1 AND created_by = $2`, id, userID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("course not found")
	}
	return nil
}

const materialColumns = `id, course_id, name, type, content, file_url, user_id, created_at`

// CreateMaterial inserts a course material row.
func (r *CourseRepo) CreateMaterial(ctx context.Context, userID string, req *model.CreateMaterialRequest) (model.CourseMaterial, error) {
	if err := req.Validate(); err != nil {
		return model.CourseMaterial{}, apperrors.Validation(err.Error())
	}
	rows, err := r.Pool.Query(ctx, `
		INSERT INTO course_materials (course_id, name, type, content, file_url, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+materialColumns,
		req.CourseID, req.Name, req.Type, req.Content, req.FileURL, userID)
	if err != nil {
		return model.CourseMaterial{}, apperrors.MapDBError(err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.CourseMaterial])
	if err != nil {
		return model.CourseMaterial{}, apperrors.MapDBError(err)
	}
	return m, nil
}

// ListMaterials returns a course's materials, newest first.
func (r *CourseRepo) ListMaterials(ctx context.Context, courseID int64) ([]model.CourseMaterial, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+materialColumns+` FROM course_materials
		 WHERE course_id = $1 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.CourseMaterial])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// DeleteMaterial removes one material owned by the caller.
func (r *CourseRepo) DeleteMaterial(ctx context.Context, id int64, userID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM course_materials WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("material not found")
	}
	return nil
}
