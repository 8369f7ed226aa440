package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/domain/model"
)

// GroupHandlers serves study groups and membership.
type GroupHandlers struct {
	Groups *data.GroupRepo
	Logger *slog.Logger
}

// List returns all study groups with member counts.
func (h *GroupHandlers) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Groups.List(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// Create creates a study group; the creator joins automatically.
func (h *GroupHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateStudyGroupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	group, err := h.Groups.Create(r.Context(), currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, group)
}

// Join adds the caller to a group by id.
func (h *GroupHandlers) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Groups.Join(r.Context(), id, currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"joined": true, "group_id": id})
}

type joinByInviteRequest struct {
	InviteCode string `json:"invite_code"`
}

// JoinByInvite adds the caller to the group matching the invite code.
func (h *GroupHandlers) JoinByInvite(w http.ResponseWriter, r *http.Request) {
	var req joinByInviteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	group, err := h.Groups.JoinByInvite(r.Context(), req.InviteCode, currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, group)
}

// Leave removes the caller from a group.
func (h *GroupHandlers) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Groups.Leave(r.Context(), id, currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"left": true, "group_id": id})
}

// Members lists a group's members.
func (h *GroupHandlers) Members(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	members, err := h.Groups.Members(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"members": members})
}
