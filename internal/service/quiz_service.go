package service

import (
	"context"
	"log/slog"

	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// QuizGenerator produces question sets for a topic. The LLM adapter
// implements it; tests use a canned generator.
type QuizGenerator interface {
	Generate(ctx context.Context, req *model.GenerateQuizRequest) ([]model.QuizQuestion, error)
}

// QuizServiceOptions groups dependencies for QuizService.
type QuizServiceOptions struct {
	Generator QuizGenerator
	Repo      *data.QuizRepo
	Logger    *slog.Logger
}

// QuizService generates, stores and scores quizzes. Correct answers stay
// server-side: everything handed to a quiz taker is sanitized, and scoring
// happens against the stored quiz.
type QuizService struct {
	generator QuizGenerator
	repo      *data.QuizRepo
	logger    *slog.Logger
}

// NewQuizService constructs a QuizService.
func NewQuizService(opts QuizServiceOptions) *QuizService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizService{
		generator: opts.Generator,
		repo:      opts.Repo,
		logger:    logger.With("component", "quiz_service"),
	}
}

// Generate produces a quiz for the user and persists it. The returned quiz is
// sanitized.
func (s *QuizService) Generate(ctx context.Context, userID string, req *model.GenerateQuizRequest) (model.Quiz, error) {
	if err := req.Validate(); err != nil {
		return model.Quiz{}, apperrors.Validation(err.Error())
	}

	questions, err := s.generator.Generate(ctx, req)
	if err != nil {
		return model.Quiz{}, err
	}

	quiz, err := s.repo.Create(ctx, userID, req.Topic, req.Difficulty, questions)
	if err != nil {
		return model.Quiz{}, err
	}
	s.logger.Info("quiz generated", "user_id", userID, "topic", req.Topic,
		"questions", len(quiz.Questions))
	return quiz.Sanitized(), nil
}

// List returns the user's quizzes, sanitized.
func (s *QuizService) List(ctx context.Context, userID string) ([]model.Quiz, error) {
	quizzes, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		quizzes[i] = quizzes[i].Sanitized()
	}
	return quizzes, nil
}

// Get returns one of the user's quizzes, sanitized.
func (s *QuizService) Get(ctx context.Context, id int64, userID string) (model.Quiz, error) {
	quiz, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return model.Quiz{}, err
	}
	return quiz.Sanitized(), nil
}

// Submit scores the user's answers against the stored quiz.
func (s *QuizService) Submit(ctx context.Context, id int64, userID string, answers []model.QuizAnswer) (model.QuizResult, error) {
	quiz, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return model.QuizResult{}, err
	}
	return quiz.Score(answers), nil
}

// Delete removes one of the user's quizzes.
func (s *QuizService) Delete(ctx context.Context, id int64, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}
