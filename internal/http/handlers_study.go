package httpx

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/domain/model"
)

// statsWindow is how far back the study stats endpoint aggregates.
const statsWindow = 30 * 24 * time.Hour

// StudyHandlers serves focus-timer sessions and study statistics.
type StudyHandlers struct {
	Sessions *data.StudyRepo
	Logger   *slog.Logger
}

// Start opens a study or break session for the caller.
func (h *StudyHandlers) Start(w http.ResponseWriter, r *http.Request) {
	var req model.StartStudySessionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	session, err := h.Sessions.Start(r.Context(), currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, session)
}

// Finish closes an open session and records its elapsed minutes.
func (h *StudyHandlers) Finish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	session, err := h.Sessions.Finish(r.Context(), id, currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

// List returns the caller's recent sessions.
func (h *StudyHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	sessions, err := h.Sessions.List(r.Context(), currentUserID(r.Context()), limit)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// Stats returns per-day study totals over the last 30 days plus the current
// consecutive-day streak.
func (h *StudyHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	totals, err := h.Sessions.DayTotals(r.Context(), currentUserID(r.Context()), now.Add(-statsWindow))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	minutes := 0
	for _, t := range totals {
		minutes += t.Minutes
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"days":          totals,
		"total_minutes": minutes,
		"streak_days":   model.StudyStreak(totals, now),
	})
}
