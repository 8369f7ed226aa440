package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
)

// RoleCache stores resolved role strings per user id. Entries are advisory:
// they speed up guard decisions during provider hiccups but are overwritten on
// every fresh profile fetch.
type RoleCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// RoleCacheOptions groups dependencies for RoleCache.
type RoleCacheOptions struct {
	Client redis.UniversalClient
	TTL    time.Duration // default 24h when zero
	Logger *slog.Logger
}

// NewRoleCache creates a Redis-backed role cache.
func NewRoleCache(opts RoleCacheOptions) *RoleCache {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleCache{client: opts.Client, prefix: "userrole:", ttl: ttl, logger: logger}
}

// SaveRole writes the resolved role for userID.
func (c *RoleCache) SaveRole(ctx context.Context, userID string, role domainauth.Role) error {
	if userID == "" {
		return errors.New("user id cannot be empty")
	}
	return c.client.Set(ctx, c.prefix+userID, string(role), c.ttl).Err()
}

// LoadRole returns the cached role for userID and whether a valid entry was
// present. Unparseable values are treated as a miss.
func (c *RoleCache) LoadRole(ctx context.Context, userID string) (domainauth.Role, bool) {
	if userID == "" {
		return "", false
	}
	val, err := c.client.Get(ctx, c.prefix+userID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "role cache read failed", "user_id", userID, "error", err)
		}
		return "", false
	}
	role, ok := domainauth.ParseRole(val)
	if !ok {
		return "", false
	}
	return role, true
}

// ClearRole removes the cached role for userID.
func (c *RoleCache) ClearRole(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return c.client.Del(ctx, c.prefix+userID).Err()
}
