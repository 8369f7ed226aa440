package redis

// Package redis provides Redis-based caches for the portal: the persisted
// auth-state snapshot used as a degraded fallback during provider outages,
// and the advisory resolved-role cache.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
)

// SnapshotStore persists auth-state snapshots with a TTL so stale fallbacks
// age out on their own.
type SnapshotStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// SnapshotStoreOptions groups dependencies for SnapshotStore.
type SnapshotStoreOptions struct {
	Client redis.UniversalClient
	TTL    time.Duration // default 12h when zero
	Logger *slog.Logger
}

// NewSnapshotStore creates a Redis-backed snapshot store.
func NewSnapshotStore(opts SnapshotStoreOptions) *SnapshotStore {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{
		client: opts.Client,
		prefix: "authstate:",
		ttl:    ttl,
		logger: logger,
	}
}

// Save serializes the snapshot under the given cache key. No validation is
// performed; the snapshot is advisory by contract.
func (s *SnapshotStore) Save(ctx context.Context, key string, snap domainauth.Snapshot) error {
	if key == "" {
		return errors.New("snapshot key cannot be empty")
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

// Load returns the snapshot for key and whether one was present. Malformed
// payloads are logged, deleted, and reported as absent; the store degrades to
// "none" rather than raising.
func (s *SnapshotStore) Load(ctx context.Context, key string) (domainauth.Snapshot, bool, error) {
	if key == "" {
		return domainauth.Snapshot{}, false, nil
	}
	data, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Snapshot{}, false, nil
		}
		return domainauth.Snapshot{}, false, fmt.Errorf("redis get: %w", err)
	}

	var snap domainauth.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		s.logger.WarnContext(ctx, "discarding malformed auth snapshot", "key", key, "error", err)
		if delErr := s.client.Del(ctx, s.prefix+key).Err(); delErr != nil {
			s.logger.WarnContext(ctx, "delete malformed auth snapshot failed", "key", key, "error", delErr)
		}
		return domainauth.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Clear removes the snapshot for key.
func (s *SnapshotStore) Clear(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+key).Err()
}
