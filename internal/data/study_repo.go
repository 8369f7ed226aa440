package data

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// StudyRepo provides database operations for pomodoro study sessions.
type StudyRepo struct {
	Pool *pgxpool.Pool
}

// NewStudyRepo creates a new StudyRepo.
func NewStudyRepo(pool *pgxpool.Pool) *StudyRepo {
	return &StudyRepo{Pool: pool}
}

const studyColumns = `id, user_id, kind, started_at, ended_at, planned_minutes, elapsed_minutes`

// Start opens a new session for the user.
func (r *StudyRepo) Start(ctx context.Context, userID string, req *model.StartStudySessionRequest) (model.StudySession, error) {
	if err := req.Validate(); err != nil {
		return model.StudySession{}, apperrors.Validation(err.Error())
	}
	rows, err := r.Pool.Query(ctx, `
		INSERT INTO study_sessions (user_id, kind, planned_minutes)
		VALUES ($1, $2, $3)
		RETURNING `+studyColumns,
		userID, req.Kind, req.PlannedMinutes)
	if err != nil {
		return model.StudySession{}, apperrors.MapDBError(err)
	}
	s, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.StudySession])
	if err != nil {
		return model.StudySession{}, apperrors.MapDBError(err)
	}
	return s, nil
}

// Finish closes the user's open session, recording the elapsed minutes from
// the database clock. Already-finished sessions are not touched.
func (r *StudyRepo) Finish(ctx context.Context, id int64, userID string) (model.StudySession, error) {
	rows, err := r.Pool.Query(ctx, `
		UPDATE study_sessions
		SET ended_at = now(),
		    elapsed_minutes = GREATEST(0, FLOOR(EXTRACT(EPOCH FROM now() - started_at) / 60))::int
		WHERE id = $1 AND user_id = $2 AND ended_at IS NULL
		RETURNING `+studyColumns,
		id, userID)
	if err != nil {
		return model.StudySession{}, apperrors.MapDBError(err)
	}
	s, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.StudySession])
	if err != nil {
		return model.StudySession{}, apperrors.MapDBError(err)
	}
	return s, nil
}

// List returns the user's most recent sessions, newest first.
func (r *StudyRepo) List(ctx context.Context, userID string, limit int) ([]model.StudySession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT `+studyColumns+` FROM study_sessions
		 WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.StudySession])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// DayTotals aggregates completed study minutes per calendar day since the
// cutoff. Break sessions are excluded so streaks only count real focus time.
func (r *StudyRepo) DayTotals(ctx context.Context, userID string, since time.Time) ([]model.StudyDayTotal, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT date_trunc('day', started_at) AS day,
		       COALESCE(SUM(elapsed_minutes), 0)::int AS minutes
		FROM study_sessions
		WHERE user_id = $1 AND kind = 'study' AND ended_at IS NOT NULL AND started_at >= $2
		GROUP BY 1
		ORDER BY 1`, userID, since)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.StudyDayTotal])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}
