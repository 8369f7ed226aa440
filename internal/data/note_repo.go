package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// NoteRepo provides database operations for user notes. All operations are
// scoped to the owning user.
type NoteRepo struct {
	Pool *pgxpool.Pool
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{Pool: pool}
}

const noteColumns = `id, user_id, title, body, created_at, updated_at`

// Create inserts a note.
func (r *NoteRepo) Create(ctx context.Context, userID string, req *model.CreateNoteRequest) (model.Note, error) {
	if err := req.Validate(); err != nil {
		return model.Note{}, apperrors.Validation(err.Error())
	}
	rows, err := r.Pool.Query(ctx, `
		INSERT INTO notes (user_id, title, body) VALUES ($1, $2, $3)
		RETURNING `+noteColumns,
		userID, req.Title, req.Body)
	if err != nil {
		return model.Note{}, apperrors.MapDBError(err)
	}
	n, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.Note])
	if err != nil {
		return model.Note{}, apperrors.MapDBError(err)
	}
	return n, nil
}

// List returns the user's notes, most recently updated first.
func (r *NoteRepo) List(ctx context.Context, userID string) ([]model.Note, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Note])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Update applies an UpdateNoteRequest to the user's own note.
func (r *NoteRepo) Update(ctx context.Context, id int64, userID string, req *model.UpdateNoteRequest) (model.Note, error) {
	if err := req.Validate(); err != nil {
		return model.Note{}, apperrors.Validation(err.Error())
	}
	rows, err := r.Pool.Query(ctx, `
		UPDATE notes SET
			title = COALESCE($3, title),
			body = COALESCE($4, body),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+noteColumns,
		id, userID, req.Title, req.Body)
	if err != nil {
		return model.Note{}, apperrors.MapDBError(err)
	}
	n, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.Note])
	if err != nil {
		return model.Note{}, apperrors.MapDBError(err)
	}
	return n, nil
}

// Delete removes the user's own note.
func (r *NoteRepo) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("note not found")
	}
	return nil
}
