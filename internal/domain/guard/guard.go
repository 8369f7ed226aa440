package guard

// Package guard holds the pure routing decision logic consulted on every
// navigation. It maps auth state to a render/redirect outcome and performs no
// I/O; the HTTP middleware translates decisions into responses.

import "github.com/pulse-camp/portal-api/internal/domain/auth"

// Outcome enumerates the possible guard decisions.
type Outcome string

const (
	// OutcomeRender allows the requested view.
	OutcomeRender Outcome = "render"
	// OutcomeLoading renders a loading placeholder while the session check is
	// still in flight. No redirect is issued to avoid redirect flicker.
	OutcomeLoading Outcome = "loading"
	// OutcomeRedirectLogin sends the user to the sign-in route, preserving the
	// originally requested path.
	OutcomeRedirectLogin Outcome = "redirect_login"
	// OutcomeRedirectDashboard sends the user to the authenticated landing
	// route, optionally with an explanatory message.
	OutcomeRedirectDashboard Outcome = "redirect_dashboard"
)

// Input is the state the guard decides over.
type Input struct {
	Loading        bool
	SessionChecked bool
	Authenticated  bool
	Role           auth.Role

	// RequireAuth marks routes that need a session.
	RequireAuth bool
	// RequiredRole, when set, additionally requires this role (admin always
	// passes).
	RequiredRole auth.Role
	// PublicOnly marks routes that must not be visited with a live session
	// (login, register).
	PublicOnly bool

	// Path is the originally requested path, carried through login redirects.
	Path string
}

// Decision is the guard's verdict for one navigation.
type Decision struct {
	Outcome Outcome
	// From is the originating path to restore after sign-in.
	From string
	// Message is an explanatory note for access-denied redirects.
	Message string
}

// Decide maps auth state to a guard decision. It is total: every input yields
// exactly one decision.
func Decide(in Input) Decision {
	// An unfinished session check always wins, regardless of other fields.
	if in.Loading || !in.SessionChecked {
		return Decision{Outcome: OutcomeLoading}
	}

	if in.PublicOnly && in.Authenticated {
		return Decision{Outcome: OutcomeRedirectDashboard}
	}

	needsAuth := in.RequireAuth || in.RequiredRole != ""
	if needsAuth && !in.Authenticated {
		return Decision{Outcome: OutcomeRedirectLogin, From: in.Path}
	}

	if in.RequiredRole != "" && !in.Role.Satisfies(in.RequiredRole) {
		return Decision{
			Outcome: OutcomeRedirectDashboard,
			Message: "Access denied: you need " + string(in.RequiredRole) + " privileges to view this page.",
		}
	}

	return Decision{Outcome: OutcomeRender}
}
