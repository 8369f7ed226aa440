package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/domain/model"
)

// NoteHandlers serves personal notes.
type NoteHandlers struct {
	Notes  *data.NoteRepo
	Logger *slog.Logger
}

// List returns the caller's notes, newest first.
func (h *NoteHandlers) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Notes.List(r.Context(), currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// Create creates a note for the caller.
func (h *NoteHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateNoteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	note, err := h.Notes.Create(r.Context(), currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, note)
}

// Update patches one of the caller's notes.
func (h *NoteHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.UpdateNoteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	note, err := h.Notes.Update(r.Context(), id, currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, note)
}

// Delete removes one of the caller's notes.
func (h *NoteHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Notes.Delete(r.Context(), id, currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
