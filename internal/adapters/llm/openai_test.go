package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])
		msgs, ok := req["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 2)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "rate limited"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGenerator(srv *httptest.Server) *Generator {
	return NewGenerator(Config{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestGeneratorParsesQuestionsObject(t *testing.T) {
	content := `{"questions": [
		{"question": "2+2?", "options": ["3", "4", "5", "6"], "correctAnswer": "4"},
		{"question": "3*3?", "options": ["6", "9", "12", "3"], "correctAnswer": "9"}
	]}`
	srv := chatServer(t, content, http.StatusOK)

	qs, err := newTestGenerator(srv).Generate(context.Background(), &model.GenerateQuizRequest{
		Topic:         "arithmetic",
		QuestionCount: 2,
	})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "4", qs[0].CorrectAnswer)
	assert.NotEmpty(t, qs[0].ID, "ids are assigned server-side")
	assert.NotEqual(t, qs[0].ID, qs[1].ID)
}

func TestGeneratorToleratesAlternateShapes(t *testing.T) {
	cases := map[string]string{
		"quiz key":        `{"quiz": [{"question": "Q?", "options": ["a", "b"], "correctAnswer": "a"}]}`,
		"nested quiz":     `{"quiz": {"questions": [{"question": "Q?", "options": ["a", "b"], "correctAnswer": "a"}]}}`,
		"bare array":      `[{"question": "Q?", "options": ["a", "b"], "correctAnswer": "a"}]`,
		"fenced markdown": "```json\n{\"questions\": [{\"question\": \"Q?\", \"options\": [\"a\", \"b\"], \"correctAnswer\": \"a\"}]}\n```",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			srv := chatServer(t, content, http.StatusOK)
			qs, err := newTestGenerator(srv).Generate(context.Background(), &model.GenerateQuizRequest{
				Topic:         "go",
				QuestionCount: 1,
			})
			require.NoError(t, err)
			require.Len(t, qs, 1)
			assert.Equal(t, "Q?", qs[0].Question)
		})
	}
}

func TestGeneratorTruncatesExtraQuestions(t *testing.T) {
	content := `{"questions": [
		{"question": "a?", "options": ["1", "2"], "correctAnswer": "1"},
		{"question": "b?", "options": ["1", "2"], "correctAnswer": "1"},
		{"question": "c?", "options": ["1", "2"], "correctAnswer": "1"}
	]}`
	srv := chatServer(t, content, http.StatusOK)

	qs, err := newTestGenerator(srv).Generate(context.Background(), &model.GenerateQuizRequest{
		Topic:         "go",
		QuestionCount: 2,
	})
	require.NoError(t, err)
	assert.Len(t, qs, 2)
}

func TestGeneratorSkipsMalformedQuestions(t *testing.T) {
	content := `{"questions": [
		{"question": "", "options": ["1", "2"]},
		{"question": "ok?", "options": ["1"]},
		{"question": "real?", "options": ["1", "2"], "correctAnswer": "2"}
	]}`
	srv := chatServer(t, content, http.StatusOK)

	qs, err := newTestGenerator(srv).Generate(context.Background(), &model.GenerateQuizRequest{
		Topic:         "go",
		QuestionCount: 5,
	})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "real?", qs[0].Question)
}

func TestGeneratorErrors(t *testing.T) {
	t.Run("invalid request", func(t *testing.T) {
		_, err := NewGenerator(Config{BaseURL: "http://unused"}).Generate(context.Background(),
			&model.GenerateQuizRequest{Topic: "", QuestionCount: 3})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("upstream failure surfaces the message", func(t *testing.T) {
		srv := chatServer(t, "", http.StatusTooManyRequests)
		_, err := newTestGenerator(srv).Generate(context.Background(), &model.GenerateQuizRequest{
			Topic:         "go",
			QuestionCount: 1,
		})
		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("non-JSON reply", func(t *testing.T) {
		srv := chatServer(t, "Sure! Here are your questions:", http.StatusOK)
		_, err := newTestGenerator(srv).Generate(context.Background(), &model.GenerateQuizRequest{
			Topic:         "go",
			QuestionCount: 1,
		})
		assert.ErrorContains(t, err, "not JSON")
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		gen := NewGenerator(Config{BaseURL: "http://127.0.0.1:1", APIKey: "k"})
		_, err := gen.Generate(context.Background(), &model.GenerateQuizRequest{
			Topic:         "go",
			QuestionCount: 1,
		})
		assert.True(t, apperrors.IsTimeout(err))
	})
}
