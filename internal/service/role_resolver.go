package service

import (
	"context"
	"log/slog"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	"github.com/pulse-camp/portal-api/internal/ports"
)

// RoleResolverOptions groups dependencies for RoleResolver.
type RoleResolverOptions struct {
	Profiles ports.ProfileDirectory
	Roles    ports.RoleCache
	Logger   *slog.Logger
}

// RoleResolver determines a user's role through an ordered fallback chain.
// It always terminates with a valid role; failures along the chain are logged
// and never surfaced.
type RoleResolver struct {
	profiles ports.ProfileDirectory
	roles    ports.RoleCache
	logger   *slog.Logger
}

// NewRoleResolver constructs a new RoleResolver.
func NewRoleResolver(opts RoleResolverOptions) *RoleResolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleResolver{
		profiles: opts.Profiles,
		roles:    opts.Roles,
		logger:   logger,
	}
}

// ResolveResult carries the resolved role plus the profile when one was
// obtained along the way.
type ResolveResult struct {
	Role    domainauth.Role
	Profile domainauth.Profile
	// ProfileLoaded reports whether Profile carries a real row.
	ProfileLoaded bool
}

// Resolve walks the chain: denormalized profile view, raw profile row's role
// id, role-id metadata on the identity, then the student default. Each step is
// attempted only when the previous one fails or yields nothing usable. The
// winning role is written to the role cache for availability fallbacks.
func (r *RoleResolver) Resolve(ctx context.Context, identity domainauth.Identity) ResolveResult {
	res := r.resolve(ctx, identity)
	if err := r.roles.SaveRole(ctx, identity.ID, res.Role); err != nil {
		r.logger.Warn("role cache write failed", "user_id", identity.ID, "error", err)
	}
	return res
}

func (r *RoleResolver) resolve(ctx context.Context, identity domainauth.Identity) ResolveResult {
	// 1. Denormalized view: role name joined onto the profile row.
	profile, err := r.profiles.ProfileWithRole(ctx, identity.ID)
	if err == nil && profile.RoleName != "" {
		return ResolveResult{Role: profile.Role(), Profile: profile, ProfileLoaded: true}
	}
	if err != nil {
		r.logger.Debug("profile view lookup failed, falling back to profile row",
			"user_id", identity.ID, "error", err)
	}

	// 2. Raw profile row: numeric role id through the fixed mapping.
	row, rowErr := r.profiles.ProfileByID(ctx, identity.ID)
	if rowErr == nil {
		return ResolveResult{Role: domainauth.RoleFromID(row.RoleID), Profile: row, ProfileLoaded: true}
	}
	r.logger.Debug("profile row lookup failed, falling back to identity metadata",
		"user_id", identity.ID, "error", rowErr)

	// 3. Role id stamped into the identity metadata at sign-up.
	if identity.Metadata.RoleID != 0 {
		return ResolveResult{Role: domainauth.RoleFromID(identity.Metadata.RoleID)}
	}

	// 4. Default.
	return ResolveResult{Role: domainauth.RoleStudent}
}
