package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulse-camp/portal-api/internal/domain/auth"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Decision
	}{
		{
			name: "loading always renders placeholder",
			in:   Input{Loading: true, SessionChecked: true, Authenticated: true, RequireAuth: true},
			want: Decision{Outcome: OutcomeLoading},
		},
		{
			name: "unchecked session renders placeholder even for public routes",
			in:   Input{SessionChecked: false},
			want: Decision{Outcome: OutcomeLoading},
		},
		{
			name: "unauthenticated on protected route redirects to login with origin",
			in: Input{
				SessionChecked: true,
				Authenticated:  false,
				RequireAuth:    true,
				Path:           "/courses/42",
			},
			want: Decision{Outcome: OutcomeRedirectLogin, From: "/courses/42"},
		},
		{
			name: "role requirement implies auth requirement",
			in: Input{
				SessionChecked: true,
				Authenticated:  false,
				RequiredRole:   auth.RoleTeacher,
				Path:           "/assignments/new",
			},
			want: Decision{Outcome: OutcomeRedirectLogin, From: "/assignments/new"},
		},
		{
			name: "admin satisfies teacher requirement",
			in: Input{
				SessionChecked: true,
				Authenticated:  true,
				Role:           auth.RoleAdmin,
				RequiredRole:   auth.RoleTeacher,
			},
			want: Decision{Outcome: OutcomeRender},
		},
		{
			name: "student denied on teacher route with message",
			in: Input{
				SessionChecked: true,
				Authenticated:  true,
				Role:           auth.RoleStudent,
				RequiredRole:   auth.RoleTeacher,
			},
			want: Decision{
				Outcome: OutcomeRedirectDashboard,
				Message: "Access denied: you need teacher privileges to view this page.",
			},
		},
		{
			name: "authenticated user on public-only route goes to dashboard",
			in: Input{
				SessionChecked: true,
				Authenticated:  true,
				Role:           auth.RoleStudent,
				PublicOnly:     true,
			},
			want: Decision{Outcome: OutcomeRedirectDashboard},
		},
		{
			name: "anonymous user may view public-only route",
			in:   Input{SessionChecked: true, PublicOnly: true},
			want: Decision{Outcome: OutcomeRender},
		},
		{
			name: "plain authenticated route renders",
			in: Input{
				SessionChecked: true,
				Authenticated:  true,
				Role:           auth.RoleStudent,
				RequireAuth:    true,
			},
			want: Decision{Outcome: OutcomeRender},
		},
		{
			name: "unprotected route renders for anonymous",
			in:   Input{SessionChecked: true},
			want: Decision{Outcome: OutcomeRender},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.in))
		})
	}
}
