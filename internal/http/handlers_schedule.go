package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/domain/model"
)

// ScheduleHandlers serves the weekly schedule builder.
type ScheduleHandlers struct {
	Schedule *data.ScheduleRepo
	Logger   *slog.Logger
}

// List returns the caller's schedule blocks ordered by weekday and start.
func (h *ScheduleHandlers) List(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.Schedule.List(r.Context(), currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"blocks": blocks})
}

// Create adds a schedule block; overlapping blocks on the same weekday are
// rejected with a conflict.
func (h *ScheduleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateScheduleBlockRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	block, err := h.Schedule.Create(r.Context(), currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, block)
}

// Delete removes one of the caller's schedule blocks.
func (h *ScheduleHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Schedule.Delete(r.Context(), id, currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
