package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/dashboard/domain/repository"
	"docdb-dashboard/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "docdb-dashboard:stats:"

// RedisStatsCache keeps collection stats in Redis under a per-database namespace
type RedisStatsCache struct {
	client    *redis.Client
	mu        sync.RWMutex
	namespace string
	logger    logger.Logger
}

var _ repository.StatsCache = (*RedisStatsCache)(nil)

// NewRedisStatsCache creates a cache whose keys are scoped to namespace,
// normally the name of the database being listed.
func NewRedisStatsCache(client *redis.Client, namespace string, log logger.Logger) *RedisStatsCache {
	return &RedisStatsCache{
		client:    client,
		namespace: namespace,
		logger:    log.WithComponent("stats_cache"),
	}
}

func (c *RedisStatsCache) key(collection string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return keyPrefix + c.namespace + ":" + collection
}

// Get returns cached stats, ok is false on a miss
func (c *RedisStatsCache) Get(ctx context.Context, collection string) (model.CollectionStats, bool, error) {
	raw, err := c.client.Get(ctx, c.key(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CollectionStats{}, false, nil
	}
	if err != nil {
		return model.CollectionStats{}, false, err
	}

	var stats model.CollectionStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		}).Warn("Discarding unreadable cached stats")
		c.client.Del(ctx, c.key(collection))
		return model.CollectionStats{}, false, nil
	}
	return stats, true, nil
}

// Set stores stats for ttl; a non-positive ttl disables caching
func (c *RedisStatsCache) Set(ctx context.Context, collection string, stats model.CollectionStats, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(collection), payload, ttl).Err()
}

// Flush removes every entry of every namespace
func (c *RedisStatsCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	c.logger.WithFields(map[string]interface{}{"keys": len(keys)}).Debug("Flushed stats cache")
	return nil
}

// SetNamespace rescopes the cache, used when the primary database changes
func (c *RedisStatsCache) SetNamespace(namespace string) {
	c.mu.Lock()
	c.namespace = namespace
	c.mu.Unlock()
}
