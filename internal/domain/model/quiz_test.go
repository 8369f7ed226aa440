package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleQuiz() Quiz {
	return Quiz{
		ID:    7,
		Topic: "Go concurrency",
		Questions: []QuizQuestion{
			{ID: "q1", Question: "What does a nil channel receive do?", Options: []string{"panics", "blocks forever", "returns zero"}, CorrectAnswer: "blocks forever"},
			{ID: "q2", Question: "What starts a goroutine?", Options: []string{"go", "run", "spawn"}, CorrectAnswer: "go"},
			{ID: "q3", Question: "What guards shared state?", Options: []string{"sync.Mutex", "fmt.Println"}, CorrectAnswer: "sync.Mutex"},
		},
	}
}

func TestQuizScore(t *testing.T) {
	quiz := sampleQuiz()

	res := quiz.Score([]QuizAnswer{
		{QuestionID: "q1", Answer: "blocks forever"},
		{QuestionID: "q2", Answer: "spawn"},
		{QuestionID: "unknown", Answer: "go"},
		// q3 unanswered
	})

	assert.Equal(t, int64(7), res.QuizID)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Correct)
	assert.True(t, res.PerItem["q1"])
	assert.False(t, res.PerItem["q2"])
	assert.False(t, res.PerItem["q3"], "unanswered counts as incorrect")
}

func TestQuizSanitized(t *testing.T) {
	quiz := sampleQuiz()
	clean := quiz.Sanitized()

	for _, q := range clean.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}
	// The original is untouched.
	assert.Equal(t, "blocks forever", quiz.Questions[0].CorrectAnswer)
}

func TestGenerateQuizRequestValidate(t *testing.T) {
	t.Run("defaults difficulty to medium", func(t *testing.T) {
		req := GenerateQuizRequest{Topic: "WWII", QuestionCount: 5}
		assert.NoError(t, req.Validate())
		assert.Equal(t, QuizDifficultyMedium, req.Difficulty)
	})

	tests := []struct {
		name string
		req  GenerateQuizRequest
	}{
		{"empty topic", GenerateQuizRequest{QuestionCount: 5}},
		{"bad difficulty", GenerateQuizRequest{Topic: "x", Difficulty: "brutal", QuestionCount: 5}},
		{"zero questions", GenerateQuizRequest{Topic: "x"}},
		{"too many questions", GenerateQuizRequest{Topic: "x", QuestionCount: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.req.Validate())
		})
	}
}
