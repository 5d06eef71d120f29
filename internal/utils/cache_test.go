package utils

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		var out map[string]int
		found, err := GetCache(ctx, rdb, "k", &out)
		require.NoError(t, err)
		assert.False(t, found)

		gen, err := CacheGeneration(ctx, rdb, "k")
		require.NoError(t, err)
		require.NoError(t, SetCacheAt(ctx, rdb, "k", gen, map[string]int{"a": 1}, EpisodeCacheTTL))
		assert.True(t, mr.Exists("k"))

		found, err = GetCache(ctx, rdb, "k", &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 1, out["a"])

		require.NoError(t, InvalidateCache(ctx, rdb, "k"))
		assert.False(t, mr.Exists("k"))
	})

	t.Run("Fill After Invalidation Is Dropped", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		gen, err := CacheGeneration(ctx, rdb, "k") // reader starts
		require.NoError(t, err)
		require.NoError(t, InvalidateCache(ctx, rdb, "k")) // writer commits

		require.NoError(t, SetCacheAt(ctx, rdb, "k", gen, "stale", EpisodeCacheTTL))
		assert.False(t, mr.Exists("k"), "stale fill must not land")

		gen, err = CacheGeneration(ctx, rdb, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(1), gen)
		require.NoError(t, SetCacheAt(ctx, rdb, "k", gen, "fresh", EpisodeCacheTTL))
		assert.True(t, mr.Exists("k"))
	})

	t.Run("Nil Client Is Disabled", func(t *testing.T) {
		var out string
		found, err := GetCache(ctx, nil, "k", &out)
		assert.NoError(t, err)
		assert.False(t, found)
		gen, err := CacheGeneration(ctx, nil, "k")
		assert.NoError(t, err)
		assert.Zero(t, gen)
		assert.NoError(t, SetCacheAt(ctx, nil, "k", gen, "v", EpisodeCacheTTL))
		assert.NoError(t, InvalidateCache(ctx, nil, "k"))
	})

	assert.Equal(t, "episode:abc", EpisodeCacheKey("abc"))
}
