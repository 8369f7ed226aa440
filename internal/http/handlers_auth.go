package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	"github.com/pulse-camp/portal-api/internal/ports"
	"github.com/pulse-camp/portal-api/internal/service"
)

// ssoSessionTTL bounds portal sessions minted from an institutional login.
const ssoSessionTTL = 8 * time.Hour

// AuthHandlers exposes the session state machine over HTTP.
type AuthHandlers struct {
	Manager *service.AuthManager
	Logger  *slog.Logger

	// SSO wiring; all four are nil when institutional login is disabled.
	SSO        ports.SSOProvider
	Issuer     ports.SessionIssuer
	RoleMapper ports.GroupRoleMapper
	Profiles   ports.ProfileDirectory
}

// stateResponse is the wire form of the auth state handed to the frontend.
type stateResponse struct {
	Loading        bool                 `json:"loading"`
	SessionChecked bool                 `json:"session_checked"`
	Authenticated  bool                 `json:"authenticated"`
	Unverified     bool                 `json:"unverified,omitempty"`
	ProfileLoaded  bool                 `json:"profile_loaded"`
	Identity       *domainauth.Identity `json:"identity,omitempty"`
	Profile        *domainauth.Profile  `json:"profile,omitempty"`
	Role           domainauth.Role      `json:"role,omitempty"`
}

var (
	errSSODisabled = errors.New("institutional login is not configured")
	errSSOState    = errors.New("login state did not match; restart the sign-in flow")
)

func toStateResponse(view service.AuthStateView) stateResponse {
	resp := stateResponse{
		Loading:        view.Loading,
		SessionChecked: view.SessionChecked,
		Authenticated:  view.Authenticated,
		Unverified:     view.Unverified,
		ProfileLoaded:  view.ProfileLoaded,
	}
	if view.Authenticated {
		identity := view.Identity
		resp.Identity = &identity
		resp.Role = view.Role
		if view.ProfileLoaded {
			profile := view.Profile
			resp.Profile = &profile
		}
	}
	return resp
}

// State reports the current auth state. Always 200; the body carries the
// machine state including loading.
func (h *AuthHandlers) State(w http.ResponseWriter, r *http.Request) {
	view, _ := AuthStateFromContext(r.Context())
	WriteJSON(w, http.StatusOK, toStateResponse(view))
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn authenticates with email/password.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	key := CacheKeyFromContext(r.Context())
	view, err := h.Manager.SignIn(r.Context(), key, req.Email, req.Password)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeTokenCookie(w, r, view.Session)
	WriteJSON(w, http.StatusOK, toStateResponse(view))
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	RoleID   int    `json:"role_id,omitempty"`
}

// SignUp registers a new account and signs it in.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	key := CacheKeyFromContext(r.Context())
	view, err := h.Manager.SignUp(r.Context(), key, service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
		RoleID:   req.RoleID,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeTokenCookie(w, r, view.Session)
	WriteJSON(w, http.StatusCreated, toStateResponse(view))
}

// SignOut clears all local state, then notifies the provider. The cookies are
// cleared regardless of the provider call's outcome.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	key := CacheKeyFromContext(r.Context())
	err := h.Manager.SignOut(r.Context(), key)
	clearTokenCookie(w, r)
	if err != nil {
		h.Logger.Warn("provider sign-out failed", "error", err)
		WriteJSON(w, http.StatusOK, map[string]any{
			"signed_out":        true,
			"provider_notified": false,
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"signed_out":        true,
		"provider_notified": true,
	})
}

// RefreshProfile re-resolves the profile and role for the signed-in user.
func (h *AuthHandlers) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	key := CacheKeyFromContext(r.Context())
	view, err := h.Manager.RefreshProfile(r.Context(), key)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toStateResponse(view))
}

// SSOLogin starts the institutional OIDC flow.
func (h *AuthHandlers) SSOLogin(w http.ResponseWriter, r *http.Request) {
	if h.SSO == nil {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "sso_disabled",
			Err: errSSODisabled})
		return
	}

	redirectURL := ssoCallbackURL(r)
	authURL, state, nonce, err := h.SSO.Begin(r.Context(), redirectURL)
	if err != nil {
		h.Logger.Error("sso begin failed", "error", err)
		WriteAppError(w, err)
		return
	}

	setSSOCookies(w, r, state, nonce, safeRedirectPath(r.URL.Query().Get("redirect_uri")))
	http.Redirect(w, r, authURL, http.StatusFound)
}

// SSOCallback completes the OIDC flow: verify, map groups to a role, upsert
// the profile, mint a portal session and adopt it.
func (h *AuthHandlers) SSOCallback(w http.ResponseWriter, r *http.Request) {
	if h.SSO == nil || h.Issuer == nil {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "sso_disabled",
			Err: errSSODisabled})
		return
	}

	state, nonce, redirectTo := readSSOCookies(w, r)
	if state == "" || r.URL.Query().Get("state") != state {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "sso_state_mismatch",
			Err: errSSOState})
		return
	}

	ssoIdentity, err := h.SSO.Exchange(r.Context(), ports.SSOExchangeInput{
		Code:  r.URL.Query().Get("code"),
		State: state,
		Nonce: nonce,
	})
	if err != nil {
		h.Logger.Error("sso exchange failed", "error", err)
		WriteAppError(w, err)
		return
	}

	role := domainauth.RoleStudent
	if h.RoleMapper != nil {
		role = h.RoleMapper.Map(ssoIdentity.Groups)
	}
	identity := domainauth.Identity{
		ID:    ssoIdentity.Subject,
		Email: ssoIdentity.Email,
		Metadata: domainauth.Metadata{
			Username: usernameFromEmail(ssoIdentity.Email),
			FullName: strings.TrimSpace(ssoIdentity.GivenName + " " + ssoIdentity.FamilyName),
			RoleID:   roleToID(role),
		},
	}

	if h.Profiles != nil {
		if _, err := h.Profiles.Upsert(r.Context(), domainauth.Profile{
			ID:       identity.ID,
			Username: identity.Metadata.Username,
			FullName: identity.Metadata.FullName,
			Email:    identity.Email,
			RoleID:   roleToID(role),
		}); err != nil {
			// Same policy as sign-up: the row is repaired on the next
			// resolution pass.
			h.Logger.Warn("sso profile upsert failed", "user_id", identity.ID, "error", err)
		}
	}

	sess, err := h.Issuer.Issue(r.Context(), identity, ssoSessionTTL)
	if err != nil {
		h.Logger.Error("sso session issue failed", "error", err)
		WriteAppError(w, err)
		return
	}

	writeTokenCookie(w, r, sess)
	key := CacheKeyFromContext(r.Context())
	h.Manager.Adopt(r.Context(), key, sess)

	http.Redirect(w, r, redirectTo, http.StatusFound)
}

func ssoCallbackURL(r *http.Request) string {
	scheme := "http"
	if isSecureRequest(r) {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/api/auth/sso/callback"
}

func usernameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

func roleToID(role domainauth.Role) int {
	switch role {
	case domainauth.RoleAdmin:
		return domainauth.RoleIDAdmin
	case domainauth.RoleTeacher:
		return domainauth.RoleIDTeacher
	default:
		return domainauth.RoleIDStudent
	}
}

const (
	ssoStateCookie    = "pc_sso_state"
	ssoNonceCookie    = "pc_sso_nonce"
	ssoRedirectCookie = "pc_sso_redirect"
)

func setSSOCookies(w http.ResponseWriter, r *http.Request, state, nonce, redirectTo string) {
	secure := isSecureRequest(r)
	for name, value := range map[string]string{
		ssoStateCookie:    state,
		ssoNonceCookie:    nonce,
		ssoRedirectCookie: redirectTo,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600,
		})
	}
}

func readSSOCookies(w http.ResponseWriter, r *http.Request) (state, nonce, redirectTo string) {
	redirectTo = "/dashboard"
	if c, err := r.Cookie(ssoStateCookie); err == nil {
		state = c.Value
	}
	if c, err := r.Cookie(ssoNonceCookie); err == nil {
		nonce = c.Value
	}
	if c, err := r.Cookie(ssoRedirectCookie); err == nil && c.Value != "" {
		redirectTo = safeRedirectPath(c.Value)
	}
	secure := isSecureRequest(r)
	for _, name := range []string{ssoStateCookie, ssoNonceCookie, ssoRedirectCookie} {
		http.SetCookie(w, &http.Cookie{
			Name: name, Value: "", Path: "/", HttpOnly: true,
			Secure: secure, SameSite: http.SameSiteLaxMode, MaxAge: -1,
		})
	}
	return state, nonce, redirectTo
}

// safeRedirectPath allows only same-origin relative paths, falling back to
// the dashboard.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/dashboard"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/dashboard"
	}
	return candidate
}
