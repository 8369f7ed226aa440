//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// QuizDifficulty enumerates the supported quiz difficulty levels.
type QuizDifficulty string

const (
	QuizDifficultyEasy   QuizDifficulty = "easy"
	QuizDifficultyMedium QuizDifficulty = "medium"
	QuizDifficultyHard   QuizDifficulty = "hard"
)

// Valid reports whether the difficulty is supported.
func (d QuizDifficulty) Valid() bool {
	switch d {
	case QuizDifficultyEasy, QuizDifficultyMedium, QuizDifficultyHard:
		return true
	default:
		return false
	}
}

// QuizQuestion is one multiple-choice question. CorrectAnswer is stored
// server-side and stripped from payloads sent to quiz takers.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

// Sanitized returns a copy safe to hand to a quiz taker.
func (q QuizQuestion) Sanitized() QuizQuestion {
	q.CorrectAnswer = ""
	return q
}

// Quiz is a generated multiple-choice quiz.
type Quiz struct {
	ID         int64          `json:"id"         db:"id"`
	UserID     string         `json:"user_id"    db:"user_id"`
	Topic      string         `json:"topic"      db:"topic"`
	Difficulty QuizDifficulty `json:"difficulty" db:"difficulty"`
	Questions  []QuizQuestion `json:"questions"  db:"-"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// Sanitized returns a copy with correct answers stripped from every question.
func (q Quiz) Sanitized() Quiz {
	out := q
	out.Questions = make([]QuizQuestion, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = question.Sanitized()
	}
	return out
}

// GenerateQuizRequest represents parameters to generate a Quiz.
type GenerateQuizRequest struct {
	Topic         string         `json:"topic"`
	Difficulty    QuizDifficulty `json:"difficulty"`
	QuestionCount int            `json:"question_count"`
}

// Validate validates GenerateQuizRequest.
func (r *GenerateQuizRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return errors.New("topic is required and cannot be empty")
	}
	if r.Difficulty == "" {
		r.Difficulty = QuizDifficultyMedium
	}
	if !r.Difficulty.Valid() {
		return errors.New("difficulty must be easy, medium, or hard")
	}
	if r.QuestionCount <= 0 || r.QuestionCount > 20 {
		return errors.New("question_count must be between 1 and 20")
	}
	return nil
}

// QuizAnswer is one submitted answer.
type QuizAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// QuizResult is the server-side scoring of a submission.
type QuizResult struct {
	QuizID  int64           `json:"quiz_id"`
	Total   int             `json:"total"`
	Correct int             `json:"correct"`
	PerItem map[string]bool `json:"per_item"`
}

// Score grades the submitted answers against the quiz. Unanswered questions
// count as incorrect; answers to unknown question ids are ignored.
func (q Quiz) Score(answers []QuizAnswer) QuizResult {
	byID := make(map[string]string, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a.Answer
	}
	res := QuizResult{QuizID: q.ID, Total: len(q.Questions), PerItem: make(map[string]bool, len(q.Questions))}
	for _, question := range q.Questions {
		correct := byID[question.ID] == question.CorrectAnswer && question.CorrectAnswer != ""
		res.PerItem[question.ID] = correct
		if correct {
			res.Correct++
		}
	}
	return res
}
