package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	"github.com/pulse-camp/portal-api/internal/domain/guard"
	"github.com/pulse-camp/portal-api/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WithAuthState resolves the browser's auth state once per request and stores
// it in the context. The session check runs at most once per cache key; later
// requests reuse the settled state. A request whose key has an optimistic
// snapshot is served the provisional state immediately while the check runs
// in the background. Refreshed tokens are written back to the browser.
func WithAuthState(manager *service.AuthManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := sessionKeyFromRequest(w, r)
			stored := storedSessionFromRequest(r)

			view := manager.Restore(r.Context(), key)
			switch {
			case view.SessionChecked:
				// Settled; serve as-is.
			case view.Authenticated:
				// Optimistic restore: verify in the background, the next
				// request picks up the settled result.
				go manager.State(context.WithoutCancel(r.Context()), key, stored)
			default:
				// Nothing to show until the check completes.
				view = manager.State(r.Context(), key, stored)
			}

			if view.Authenticated && !view.Unverified &&
				view.Session.AccessToken != "" && view.Session.AccessToken != stored.AccessToken {
				writeTokenCookie(w, r, view.Session)
			}

			ctx := withAuthState(r.Context(), key, view)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// guardRule describes the access policy of a route group.
type guardRule struct {
	RequireAuth  bool
	RequiredRole domainauth.Role
	PublicOnly   bool
}

// RequireAuth guards routes that need a live session.
func RequireAuth() func(http.Handler) http.Handler {
	return guardMiddleware(guardRule{RequireAuth: true})
}

// RequireRole guards routes that need a specific role; admin always passes.
func RequireRole(role domainauth.Role) func(http.Handler) http.Handler {
	return guardMiddleware(guardRule{RequireAuth: true, RequiredRole: role})
}

// PublicOnly guards routes that must not be visited with a live session.
func PublicOnly() func(http.Handler) http.Handler {
	return guardMiddleware(guardRule{PublicOnly: true})
}

func guardMiddleware(rule guardRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			view, _ := AuthStateFromContext(r.Context())
			decision := guard.Decide(guard.Input{
				Loading:        view.Loading,
				SessionChecked: view.SessionChecked,
				Authenticated:  view.Authenticated,
				Role:           view.Role,
				RequireAuth:    rule.RequireAuth,
				RequiredRole:   rule.RequiredRole,
				PublicOnly:     rule.PublicOnly,
				Path:           r.URL.RequestURI(),
			})
			applyDecision(w, r, decision, next)
		})
	}
}

// applyDecision translates a guard decision into an HTTP response: JSON
// statuses for API clients, redirects for browser navigation.
func applyDecision(w http.ResponseWriter, r *http.Request, d guard.Decision, next http.Handler) {
	switch d.Outcome {
	case guard.OutcomeRender:
		next.ServeHTTP(w, r)

	case guard.OutcomeLoading:
		// The session check has not settled (provider slow or flaky). The
		// client retries; no redirect is issued while state is unknown.
		w.Header().Set("Retry-After", "1")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "session_check_in_progress",
			"message": "Session verification is still in progress. Retry shortly.",
		})

	case guard.OutcomeRedirectLogin:
		if isBrowserNavigation(r) {
			to := "/login"
			if d.From != "" {
				to += "?redirect_uri=" + url.QueryEscape(d.From)
			}
			http.Redirect(w, r, to, http.StatusFound)
			return
		}
		WriteJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "authentication_required",
			"message": "You must be signed in to access this resource.",
		})

	case guard.OutcomeRedirectDashboard:
		if isBrowserNavigation(r) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		msg := d.Message
		if msg == "" {
			msg = "This resource is not available with an active session."
		}
		WriteJSON(w, http.StatusForbidden, map[string]string{
			"error":   "access_denied",
			"message": msg,
		})
	}
}

// isBrowserNavigation reports whether the request looks like a top-level
// browser navigation rather than an API call.
func isBrowserNavigation(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") != "" {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
