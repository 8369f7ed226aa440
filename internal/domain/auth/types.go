package auth

// Package auth contains domain-level types for identity, sessions, profiles,
// and roles. It is pure and free of adapter/transport concerns.

import "time"

// Role represents an application authorization role.
// Kept in string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Numeric role identifiers as stored on profiles and identity metadata.
const (
	RoleIDAdmin   = 1
	RoleIDTeacher = 2
	RoleIDStudent = 3
)

// RoleFromID maps a numeric role identifier to a Role.
// Unknown identifiers degrade to student rather than failing closed; the
// resolver chain treats cached roles as advisory anyway.
func RoleFromID(id int) Role {
	switch id {
	case RoleIDAdmin:
		return RoleAdmin
	case RoleIDTeacher:
		return RoleTeacher
	default:
		return RoleStudent
	}
}

// ParseRole returns the Role for a stored role string and whether it was valid.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return Role(s), true
	default:
		return RoleStudent, false
	}
}

// Satisfies reports whether a user holding r may access a resource that
// requires required. Admin satisfies every requirement.
func (r Role) Satisfies(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// Metadata carries identity-provider user metadata set at sign-up time.
// RoleID here is the last-resort source for role resolution.
type Metadata struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	RoleID   int    `json:"role_id,omitempty"`
}

// Identity represents the authenticated principal issued by the identity
// provider. ID and Email are immutable once issued.
type Identity struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Metadata Metadata `json:"metadata"`
}

// Profile is the application-level record describing a user beyond bare
// identity. Owned by the relational collaborator, keyed by Identity.ID.
type Profile struct {
	ID        string     `json:"id"                   db:"id"`
	Username  string     `json:"username"             db:"username"`
	FullName  string     `json:"full_name,omitempty"  db:"full_name"`
	Email     string     `json:"email"                db:"email"`
	RoleID    int        `json:"role_id"              db:"role_id"`
	RoleName  string     `json:"role_name,omitempty"  db:"role_name"`
	AvatarURL string     `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time  `json:"created_at"           db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Role derives the profile's role, preferring the denormalized role name over
// the numeric identifier.
func (p Profile) Role() Role {
	if r, ok := ParseRole(p.RoleName); ok {
		return r
	}
	return RoleFromID(p.RoleID)
}

// Session is the cached copy of the provider-owned session. A session is
// either absent, pending verification, or verified-valid; a session known to
// be invalid is discarded, never retained.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Identity     Identity  `json:"identity"`
	ExpiresAt    time.Time `json:"expires_at"`
	// VerifiedAt is when the provider last confirmed this session. Zero for
	// sessions restored from the snapshot cache during provider outages.
	VerifiedAt time.Time `json:"verified_at,omitempty"`
}

// Verified reports whether the provider has confirmed this session.
func (s Session) Verified() bool { return !s.VerifiedAt.IsZero() }

// Expired reports whether the session expiry has passed at t.
func (s Session) Expired(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && t.After(s.ExpiresAt)
}

// Snapshot is the persisted auth-state record used as a degraded fallback when
// the provider is slow or unreachable, and as a startup hint. It is advisory:
// a fresh Profile always supersedes it.
type Snapshot struct {
	Authenticated bool      `json:"is_authenticated"`
	Identity      Identity  `json:"user"`
	Profile       Profile   `json:"profile,omitzero"`
	Role          Role      `json:"role,omitempty"`
	SavedAt       time.Time `json:"saved_at"`
}

// EventKind enumerates provider auth-change notifications.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
	EventUserDeleted    EventKind = "user_deleted"
)

// Event is a provider auth-change notification. Session is nil for
// signed-out and user-deleted events.
type Event struct {
	Kind    EventKind
	Session *Session
}
