package data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// QuizRepo provides database operations for generated quizzes. Questions are
// stored as JSONB with their correct answers; callers sanitize before sending
// a quiz to a taker.
type QuizRepo struct {
	Pool *pgxpool.Pool
}

// NewQuizRepo creates a new QuizRepo.
func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{Pool: pool}
}

// quizRow carries the raw JSONB payload before decoding.
type quizRow struct {
	model.Quiz
	RawQuestions []byte `db:"questions"`
}

const quizColumns = `id, user_id, topic, difficulty, questions, created_at`

func (row quizRow) decode() (model.Quiz, error) {
	q := row.Quiz
	if err := json.Unmarshal(row.RawQuestions, &q.Questions); err != nil {
		return model.Quiz{}, fmt.Errorf("decoding quiz %d questions: %w", q.ID, err)
	}
	return q, nil
}

// Create stores a generated quiz.
func (r *QuizRepo) Create(ctx context.Context, userID, topic string, difficulty model.QuizDifficulty, questions []model.QuizQuestion) (model.Quiz, error) {
	payload, err := json.Marshal(questions)
	if err != nil {
		return model.Quiz{}, fmt.Errorf("encoding quiz questions: %w", err)
	}
	rows, err := r.Pool.Query(ctx, `
		INSERT INTO quizzes (user_id, topic, difficulty, questions)
		VALUES ($1, $2, $3, $4)
		RETURNING `+quizColumns,
		userID, topic, difficulty, payload)
	if err != nil {
		return model.Quiz{}, apperrors.MapDBError(err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[quizRow])
	if err != nil {
		return model.Quiz{}, apperrors.MapDBError(err)
	}
	return row.decode()
}

// Get returns the user's quiz with its correct answers intact.
func (r *QuizRepo) Get(ctx context.Context, id int64, userID string) (model.Quiz, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return model.Quiz{}, apperrors.MapDBError(err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[quizRow])
	if err != nil {
		return model.Quiz{}, apperrors.MapDBError(err)
	}
	return row.decode()
}

// List returns the user's quizzes, newest first.
func (r *QuizRepo) List(ctx context.Context, userID string) ([]model.Quiz, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	raw, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[quizRow])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out := make([]model.Quiz, 0, len(raw))
	for _, row := range raw {
		q, err := row.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// Delete removes the user's own quiz.
func (r *QuizRepo) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM quizzes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("quiz not found")
	}
	return nil
}
