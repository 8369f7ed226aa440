package httpx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	"github.com/pulse-camp/portal-api/internal/service"
)

const (
	// sessionKeyCookie carries the opaque per-browser cache key the auth
	// manager and snapshot store are keyed by.
	sessionKeyCookie = "pc_session"
	// tokenCookie carries the provider tokens (base64 JSON). The browser is
	// the durable token store, exactly like the original localStorage record;
	// the portal only caches.
	tokenCookie = "pc_tokens"

	sessionKeyTTL = 30 * 24 * time.Hour
)

type authStateKey struct{}
type cacheKeyKey struct{}

// withAuthState returns a child context carrying the resolved auth state and
// the browser's cache key.
func withAuthState(ctx context.Context, key string, view service.AuthStateView) context.Context {
	ctx = context.WithValue(ctx, cacheKeyKey{}, key)
	return context.WithValue(ctx, authStateKey{}, view)
}

// AuthStateFromContext returns the auth state placed by the middleware and
// whether one was present.
func AuthStateFromContext(ctx context.Context) (service.AuthStateView, bool) {
	view, ok := ctx.Value(authStateKey{}).(service.AuthStateView)
	return view, ok
}

// CacheKeyFromContext returns the browser's opaque cache key.
func CacheKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(cacheKeyKey{}).(string)
	return key
}

// currentUserID returns the authenticated identity id, empty when anonymous.
func currentUserID(ctx context.Context) string {
	view, ok := AuthStateFromContext(ctx)
	if !ok || !view.Authenticated {
		return ""
	}
	return view.Identity.ID
}

// sessionKeyFromRequest reads the cache-key cookie, minting a fresh key (and
// setting the cookie) when the browser has none.
func sessionKeyFromRequest(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionKeyCookie); err == nil && c.Value != "" {
		return c.Value
	}
	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionKeyCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionKeyTTL.Seconds()),
	})
	return key
}

// storedTokens holds what the token cookie serializes.
type storedTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// storedSessionFromRequest rebuilds the browser's last known session from the
// token cookie. A missing or malformed cookie yields the zero session.
func storedSessionFromRequest(r *http.Request) domainauth.Session {
	c, err := r.Cookie(tokenCookie)
	if err != nil || c.Value == "" {
		return domainauth.Session{}
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return domainauth.Session{}
	}
	var tok storedTokens
	if err := json.Unmarshal(raw, &tok); err != nil {
		return domainauth.Session{}
	}
	return domainauth.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt,
	}
}

// writeTokenCookie persists the session tokens back to the browser.
func writeTokenCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	if s.AccessToken == "" {
		return
	}
	raw, err := json.Marshal(storedTokens{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
	})
	if err != nil {
		return
	}
	maxAge := int(sessionKeyTTL.Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func clearTokenCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
