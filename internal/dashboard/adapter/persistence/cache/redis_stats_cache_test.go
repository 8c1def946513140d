package cache

import (
	"context"
	"testing"
	"time"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestRedisClient creates a Redis client for testing
func createTestRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "localhost:6379",
		DB:           15,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func newCacheOrSkip(t *testing.T, namespace string) (*RedisStatsCache, *redis.Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := createTestRedisClient()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available for testing:", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		client.FlushDB(cleanupCtx)
		client.Close()
	})

	return NewRedisStatsCache(client, namespace, logger.NewLoggerWithConfig("error", "text")), client
}

func TestRedisStatsCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newCacheOrSkip(t, "app")

	_, ok, err := c.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)

	want := model.CollectionStats{DocumentCount: 3, SizeInMB: 0.25}
	require.NoError(t, c.Set(ctx, "users", want, time.Minute))

	got, ok, err := c.Get(ctx, "users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedisStatsCache_ZeroTTLSkipsWrite(t *testing.T) {
	ctx := context.Background()
	c, _ := newCacheOrSkip(t, "app")

	require.NoError(t, c.Set(ctx, "users", model.CollectionStats{DocumentCount: 1}, 0))
	_, ok, err := c.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStatsCache_NamespaceAndFlush(t *testing.T) {
	ctx := context.Background()
	c, client := newCacheOrSkip(t, "first")

	require.NoError(t, c.Set(ctx, "users", model.CollectionStats{DocumentCount: 1}, time.Minute))

	c.SetNamespace("second")
	_, ok, err := c.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok, "entries are scoped per namespace")

	require.NoError(t, c.Set(ctx, "users", model.CollectionStats{DocumentCount: 2}, time.Minute))
	require.NoError(t, client.Set(ctx, "unrelated", "keep", time.Minute).Err())

	require.NoError(t, c.Flush(ctx))

	keys, err := client.Keys(ctx, keyPrefix+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, "keep", client.Get(ctx, "unrelated").Val())
}

func TestRedisStatsCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, client := newCacheOrSkip(t, "app")

	require.NoError(t, client.Set(ctx, c.key("users"), "not-json", time.Minute).Err())
	_, ok, err := c.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)
}
