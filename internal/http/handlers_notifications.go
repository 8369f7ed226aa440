package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	"github.com/pulse-camp/portal-api/internal/service"
)

// NotificationHandlers serves the notification bell.
type NotificationHandlers struct {
	Notifications *service.NotificationService
	Logger        *slog.Logger
}

// List returns the caller's recent notifications.
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	items, err := h.Notifications.List(r.Context(), currentUserID(r.Context()), limit)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

// UnreadCount returns how many unread notifications the caller has.
func (h *NotificationHandlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Notifications.UnreadCount(r.Context(), currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"unread": count})
}

// MarkRead marks one notification read.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Notifications.MarkRead(r.Context(), id, currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"read": true})
}

// MarkAllRead marks every notification of the caller read.
func (h *NotificationHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Notifications.MarkAllRead(r.Context(), currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"read": true})
}

// Create sends a notification to a user. Restricted to staff by the router.
func (h *NotificationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateNotificationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	notification, err := h.Notifications.Create(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, notification)
}
