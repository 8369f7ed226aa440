package data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// ScheduleRepo provides database operations for weekly schedule blocks.
type ScheduleRepo struct {
	Pool *pgxpool.Pool
}

// NewScheduleRepo creates a new ScheduleRepo.
func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{Pool: pool}
}

const scheduleColumns = `id, user_id, title, weekday, start_minutes, end_minutes, color, created_at`

// List returns the user's blocks ordered by weekday then start time.
func (r *ScheduleRepo) List(ctx context.Context, userID string) ([]model.ScheduleBlock, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+scheduleColumns+` FROM schedule_blocks
		 WHERE user_id = $1 ORDER BY weekday, start_minutes`, userID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.ScheduleBlock])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Create inserts a block after rejecting collisions with the user's existing
// blocks on the same weekday.
func (r *ScheduleRepo) Create(ctx context.Context, userID string, req *model.CreateScheduleBlockRequest) (model.ScheduleBlock, error) {
	if err := req.Validate(); err != nil {
		return model.ScheduleBlock{}, apperrors.Validation(err.Error())
	}
	candidate := req.Block()

	var created model.ScheduleBlock
	err := pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+scheduleColumns+` FROM schedule_blocks
			 WHERE user_id = $1 AND weekday = $2 FOR UPDATE`, userID, req.Weekday)
		if err != nil {
			return err
		}
		existing, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.ScheduleBlock])
		if err != nil {
			return err
		}
		for _, b := range existing {
			if candidate.Overlaps(b) {
				return apperrors.Conflict(fmt.Sprintf("schedule block overlaps %q", b.Title))
			}
		}
		rows, err = tx.Query(ctx, `
			INSERT INTO schedule_blocks (user_id, title, weekday, start_minutes, end_minutes, color)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+scheduleColumns,
			userID, candidate.Title, candidate.Weekday, candidate.StartMinutes, candidate.EndMinutes, candidate.Color)
		if err != nil {
			return err
		}
		created, err = pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.ScheduleBlock])
		return err
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			return model.ScheduleBlock{}, err
		}
		return model.ScheduleBlock{}, apperrors.MapDBError(err)
	}
	return created, nil
}

// Delete removes the user's own schedule block.
func (r *ScheduleRepo) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM schedule_blocks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("schedule block not found")
	}
	return nil
}
