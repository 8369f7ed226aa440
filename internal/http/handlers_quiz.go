package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	"github.com/pulse-camp/portal-api/internal/service"
)

// QuizHandlers serves AI-generated practice quizzes. Correct answers never
// leave the server; submissions are scored here.
type QuizHandlers struct {
	Quizzes *service.QuizService
	Logger  *slog.Logger
}

// Generate creates a quiz on the requested topic and stores it.
func (h *QuizHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateQuizRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.Quizzes.Generate(r.Context(), currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, quiz)
}

// List returns the caller's quizzes without correct answers.
func (h *QuizHandlers) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.Quizzes.List(r.Context(), currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

// Get returns one quiz without correct answers.
func (h *QuizHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	quiz, err := h.Quizzes.Get(r.Context(), id, currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, quiz)
}

type submitQuizRequest struct {
	Answers []model.QuizAnswer `json:"answers"`
}

// Submit scores the caller's answers against the stored quiz.
func (h *QuizHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req submitQuizRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	result, err := h.Quizzes.Submit(r.Context(), id, currentUserID(r.Context()), req.Answers)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// Delete removes one of the caller's quizzes.
func (h *QuizHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Quizzes.Delete(r.Context(), id, currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
