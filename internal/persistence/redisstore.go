package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"blockengine/config"
	"blockengine/internal/snapshot"
)

// snapshotKeyPrefix namespaces the ring's Redis keys.
const snapshotKeyPrefix = "engine:snapshot:"

// RedisStore backs the engine's ~100-entry snapshot ring with Redis,
// keyed by block index, adapted from the teacher's CacheService
// graceful-degradation pattern: a failed Redis operation never blocks
// the caller driving the engine, it just means that block's snapshot
// isn't cached.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	mu      sync.RWMutex
	healthy bool
	logger  zerolog.Logger
}

// NewRedisStore connects to Redis per cfg. The connection is tested with
// a single PING; failures are logged by the caller via Healthy(), not
// returned as a hard error, matching the teacher's cache degrades-to-off
// policy.
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	s := &RedisStore{
		client: client,
		ttl:    24 * time.Hour,
		logger: log.With().Str("component", "RedisStore").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pingErr := client.Ping(ctx).Err()
	if pingErr != nil {
		s.logger.Warn().Err(pingErr).Msg("redis ping failed, starting degraded")
	}
	s.healthy = pingErr == nil

	return s
}

// Healthy reports whether the last connectivity check succeeded.
func (s *RedisStore) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy
}

func (s *RedisStore) markHealth(err error) {
	s.mu.Lock()
	wasHealthy := s.healthy
	s.healthy = err == nil
	s.mu.Unlock()

	if err != nil && wasHealthy {
		s.logger.Warn().Err(err).Msg("redis operation failed, marking degraded")
	} else if err == nil && !wasHealthy {
		s.logger.Info().Msg("redis recovered")
	}
}

// Put caches one block's snapshot, keyed by block index.
func (s *RedisStore) Put(ctx context.Context, snap snapshot.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := fmt.Sprintf("%s%d", snapshotKeyPrefix, snap.BlockIndex)
	err = s.client.Set(ctx, key, data, s.ttl).Err()
	s.markHealth(err)
	if err != nil {
		return fmt.Errorf("cache snapshot: %w", err)
	}
	return nil
}

// Get fetches a cached snapshot by block index.
func (s *RedisStore) Get(ctx context.Context, blockIndex uint32) (snapshot.Snapshot, bool, error) {
	key := fmt.Sprintf("%s%d", snapshotKeyPrefix, blockIndex)
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		s.markHealth(nil)
		return snapshot.Snapshot{}, false, nil
	}
	if err != nil {
		s.markHealth(err)
		return snapshot.Snapshot{}, false, fmt.Errorf("fetch cached snapshot: %w", err)
	}
	s.markHealth(nil)

	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("unmarshal cached snapshot: %w", err)
	}
	return snap, true, nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
