package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error inspection
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// EpisodeCacheTTL is how long a cached episode detail lives
const EpisodeCacheTTL = 60 * time.Second

// generationTTL bounds how long a generation counter outlives its last write
const generationTTL = time.Hour

// EpisodeCacheKey is the cache key of one episode detail
func EpisodeCacheKey(id string) string {
	return "episode:" + id
}

// GetCache retrieves a value from Redis and unmarshals it into dest. A nil client is a miss.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

func generationKey(key string) string {
	return key + ":gen"
}

// CacheGeneration returns the write generation of key. Read it before loading the value from the database.
func CacheGeneration(ctx context.Context, rdb *redis.Client, key string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	gen, err := rdb.Get(ctx, generationKey(key)).Int64()
	if err == redis.Nil {
		return 0, nil // Never written
	}
	return gen, err
}

// SetCacheAt fills key only if no write has bumped its generation since gen was read,
// so a slow reader cannot put back a value an update already replaced.
func SetCacheAt(ctx context.Context, rdb *redis.Client, key string, gen int64, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	genKey := generationKey(key)
	err = rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return nil // Written since the read, leave the key empty
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil // A writer got in between
	}
	return err
}

// InvalidateCache drops key and bumps its generation so in-flight fills are discarded
func InvalidateCache(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	genKey := generationKey(key)
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, key)
		return nil
	})
	return err
}
