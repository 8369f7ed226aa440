package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// AssignmentRepo provides database operations for assignments and their
// recipients.
type AssignmentRepo struct {
	Pool *pgxpool.Pool
}

// NewAssignmentRepo creates a new AssignmentRepo.
func NewAssignmentRepo(pool *pgxpool.Pool) *AssignmentRepo {
	return &AssignmentRepo{Pool: pool}
}

const assignmentColumns = `id, title, description, due_date, course_id, created_by, file_url, created_at`

// Create inserts the assignment and fans it out to all recipients in one
// transaction.
func (r *AssignmentRepo) Create(ctx context.Context, userID string, req *model.CreateAssignmentRequest) (model.Assignment, error) {
	if err := req.Validate(); err != nil {
		return model.Assignment{}, apperrors.Validation(err.Error())
	}

	var created model.Assignment
	err := pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO assignments (title, description, due_date, course_id, created_by, file_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+assignmentColumns,
			req.Title, req.Description, req.DueDate, req.CourseID, userID, req.FileURL)
		if err != nil {
			return err
		}
		created, err = pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.Assignment])
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, studentID := range req.StudentIDs {
			batch.Queue(
				`INSERT INTO assignment_recipients (assignment_id, student_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`,
				created.ID, studentID)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return model.Assignment{}, apperrors.MapDBError(err)
	}
	return created, nil
}

// ListByCourse returns a course's assignments, newest first.
func (r *AssignmentRepo) ListByCourse(ctx context.Context, courseID int64) ([]model.Assignment, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE course_id = $1 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Assignment])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// ListForStudent returns the student's assignments joined with their status,
// due soonest first.
func (r *AssignmentRepo) ListForStudent(ctx context.Context, studentID string) ([]model.AssignmentWithStatus, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT a.id, a.title, a.description, a.due_date, a.course_id, a.created_by, a.file_url, a.created_at,
		       ar.status
		FROM assignments a
		JOIN assignment_recipients ar ON ar.assignment_id = a.id
		WHERE ar.student_id = $1
		ORDER BY a.due_date NULLS LAST, a.created_at DESC`, studentID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.AssignmentWithStatus])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// UpdateStatus moves a recipient row to a new status. Students may only move
// their own copy.
func (r *AssignmentRepo) UpdateStatus(ctx context.Context, assignmentID int64, studentID string, status model.AssignmentStatus) error {
	if !status.Valid() {
		return apperrors.Validation("invalid assignment status")
	}
	tag, err := r.Pool.Exec(ctx, `
		UPDATE assignment_recipients SET status = $3, updated_at = now()
		WHERE assignment_id = $1 AND student_id = $2`,
		assignmentID, studentID, status)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("assignment not found")
	}
	return nil
}

// Recipients lists the recipient rows for one assignment.
func (r *AssignmentRepo) Recipients(ctx context.Context, assignmentID int64) ([]model.AssignmentRecipient, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT assignment_id, student_id, status, updated_at
		FROM assignment_recipients WHERE assignment_id = $1`, assignmentID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.AssignmentRecipient])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}
