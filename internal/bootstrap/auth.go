package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/pulse-camp/portal-api/config"
	"github.com/pulse-camp/portal-api/internal/adapters/authroles"
	"github.com/pulse-camp/portal-api/internal/adapters/gotrue"
	"github.com/pulse-camp/portal-api/internal/adapters/localauth"
	"github.com/pulse-camp/portal-api/internal/adapters/oidcsso"
	redisadapter "github.com/pulse-camp/portal-api/internal/adapters/redis"
	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/ports"
	"github.com/pulse-camp/portal-api/internal/service"
)

// AuthStack holds the assembled auth machinery.
type AuthStack struct {
	Provider ports.IdentityProvider
	Manager  *service.AuthManager

	// SSO pieces are nil unless institutional login is enabled.
	SSO        ports.SSOProvider
	Issuer     ports.SessionIssuer
	RoleMapper ports.GroupRoleMapper
}

// AuthDeps groups dependencies for BuildAuthStack.
type AuthDeps struct {
	Config   *config.AppConfig
	Redis    *redis.Client
	Profiles *data.ProfileRepo
	Logger   *slog.Logger
}

// BuildAuthStack wires the identity provider, session acquirer, role
// resolver, and auth manager per the configured auth mode.
func BuildAuthStack(ctx context.Context, deps AuthDeps) (*AuthStack, error) {
	cfg := deps.Config
	logger := deps.Logger

	provider, issuer, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	snapshots := redisadapter.NewSnapshotStore(redisadapter.SnapshotStoreOptions{
		Client: deps.Redis,
		TTL:    cfg.Redis.SnapshotTTL,
		Logger: logger,
	})
	roles := redisadapter.NewRoleCache(redisadapter.RoleCacheOptions{
		Client: deps.Redis,
		TTL:    cfg.Redis.RoleTTL,
		Logger: logger,
	})

	acquirer := service.NewSessionAcquirer(service.SessionAcquirerOptions{
		Provider:  provider,
		Snapshots: snapshots,
		Logger:    logger,
	})
	resolver := service.NewRoleResolver(service.RoleResolverOptions{
		Profiles: deps.Profiles,
		Roles:    roles,
		Logger:   logger,
	})
	manager := service.NewAuthManager(service.AuthManagerOptions{
		Provider:  provider,
		Acquirer:  acquirer,
		Resolver:  resolver,
		Snapshots: snapshots,
		Roles:     roles,
		Profiles:  deps.Profiles,
		Logger:    logger,
	})

	stack := &AuthStack{Provider: provider, Manager: manager}
	if cfg.Auth.SSO.Enabled {
		sso, err := oidcsso.NewProvider(ctx, oidcsso.ProviderConfig{
			IssuerURL:    cfg.Auth.SSO.IssuerURL,
			ClientID:     cfg.Auth.SSO.ClientID,
			ClientSecret: cfg.Auth.SSO.ClientSecret,
			RedirectURL:  cfg.HTTP.BaseURL + "/api/auth/sso/callback",
			Scopes:       cfg.Auth.SSO.Scopes,
		})
		if err != nil {
			return nil, fmt.Errorf("configure institutional login: %w", err)
		}
		stack.SSO = sso
		stack.Issuer = issuer
		stack.RoleMapper = authroles.GroupMapper{
			AdminGroup:   cfg.Auth.SSO.AdminGroup,
			TeacherGroup: cfg.Auth.SSO.TeacherGroup,
		}
	}
	return stack, nil
}

// buildProvider constructs the identity provider for the configured mode.
// The returned issuer mints sessions for SSO logins; it signs with the same
// secret the provider verifies with, so adopted sessions survive later
// session checks.
func buildProvider(cfg *config.AppConfig) (ports.IdentityProvider, ports.SessionIssuer, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeLocal:
		provider := localauth.NewProvider(localauth.Config{
			JWTSecret:  cfg.Auth.Local.JWTSecret,
			SessionTTL: cfg.Auth.Local.SessionTTL,
		})
		return provider, provider, nil

	case config.AuthModeHosted:
		client, err := gotrue.NewClient(gotrue.Config{
			BaseURL:   cfg.Auth.Hosted.BaseURL,
			APIKey:    cfg.Auth.Hosted.APIKey,
			JWTSecret: cfg.Auth.Hosted.JWTSecret,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("configure hosted auth: %w", err)
		}
		issuer := localauth.NewProvider(localauth.Config{
			JWTSecret: cfg.Auth.Hosted.JWTSecret,
		})
		return client, issuer, nil

	default:
		return nil, nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}
