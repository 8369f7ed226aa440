package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/service"
)

// ProfileHandlers serves the signed-in user's profile and the admin user
// management endpoints.
type ProfileHandlers struct {
	Repo    *data.ProfileRepo
	Manager *service.AuthManager
	Logger  *slog.Logger
}

// Own returns the signed-in user's profile, resolving it on demand when the
// cached state has none yet.
func (h *ProfileHandlers) Own(w http.ResponseWriter, r *http.Request) {
	view, _ := AuthStateFromContext(r.Context())
	if view.ProfileLoaded {
		WriteJSON(w, http.StatusOK, view.Profile)
		return
	}

	key := CacheKeyFromContext(r.Context())
	refreshed, err := h.Manager.RefreshProfile(r.Context(), key)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, refreshed.Profile)
}

type updateProfileRequest struct {
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateOwn updates the fields a user may change on their own profile, then
// forces a profile re-resolution so cached state catches up.
func (h *ProfileHandlers) UpdateOwn(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Username == nil && req.FullName == nil && req.AvatarURL == nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation",
			Err: errNoProfileFields})
		return
	}

	userID := currentUserID(r.Context())
	profile, err := h.Repo.UpdateOwn(r.Context(), userID, req.Username, req.FullName, req.AvatarURL)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	key := CacheKeyFromContext(r.Context())
	if _, err := h.Manager.RefreshProfile(r.Context(), key); err != nil {
		h.Logger.Warn("profile refresh after update failed", "error", err)
	}
	WriteJSON(w, http.StatusOK, profile)
}

// List returns all profiles for the admin user table.
func (h *ProfileHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	profiles, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": profiles})
}

// RoleStats returns per-role user counts for the admin dashboard.
func (h *ProfileHandlers) RoleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Repo.CountByRole(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"roles": counts})
}

type setRoleRequest struct {
	RoleID int `json:"role_id"`
}

// SetRole changes another user's role (admin only).
func (h *ProfileHandlers) SetRole(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	var req setRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.RoleID < domainauth.RoleIDAdmin || req.RoleID > domainauth.RoleIDStudent {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation",
			Err: errUnknownRoleID})
		return
	}

	if err := h.Repo.SetRole(r.Context(), userID, req.RoleID); err != nil {
		WriteAppError(w, err)
		return
	}
	h.Logger.Info("role changed", "user_id", userID, "role_id", req.RoleID,
		"changed_by", currentUserID(r.Context()))
	WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"role":    domainauth.RoleFromID(req.RoleID),
	})
}
