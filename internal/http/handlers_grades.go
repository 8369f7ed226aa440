package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/domain/model"
)

// GradeHandlers serves the grade tracker and GPA summary.
type GradeHandlers struct {
	Grades *data.GradeRepo
	Logger *slog.Logger
}

// List returns the caller's grade entries.
func (h *GradeHandlers) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Grades.List(r.Context(), currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"grades": entries})
}

// Create records a grade entry; grade points are derived from the letter.
func (h *GradeHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateGradeEntryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	entry, err := h.Grades.Create(r.Context(), currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, entry)
}

// Delete removes one of the caller's grade entries.
func (h *GradeHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Grades.Delete(r.Context(), id, currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// GPA returns the caller's credit-weighted GPA over all entries.
func (h *GradeHandlers) GPA(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Grades.List(r.Context(), currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"gpa":     model.ComputeGPA(entries),
		"entries": len(entries),
	})
}
