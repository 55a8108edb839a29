package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-marketplace/internal/config"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cache, err := InitServer(context.Background(), config.Redis{RedisAddress: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestMarkAndCheckProcessed(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	processed, err := cache.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, cache.MarkProcessed(ctx, "evt_1", time.Hour))

	processed, err = cache.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = cache.IsProcessed(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestMarkProcessed_Expires(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.MarkProcessed(ctx, "evt_ttl", time.Minute))
	mr.FastForward(2 * time.Minute)

	processed, err := cache.IsProcessed(ctx, "evt_ttl")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInitServer_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = InitServer(context.Background(), config.Redis{RedisAddress: addr, RedisDialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
}

func TestIsProcessed_ServerDown(t *testing.T) {
	cache, mr := setupTestCache(t)
	mr.Close()

	_, err := cache.IsProcessed(context.Background(), "evt_1")
	assert.Error(t, err)
}
