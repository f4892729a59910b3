// internal/services/chat/gemini-delegate/cache.go
package geminidelegate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "chat:reply:"

type replyCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func cacheKey(model, message string) string {
	sum := sha256.Sum256([]byte(message))
	return cacheKeyPrefix + model + ":" + hex.EncodeToString(sum[:])
}

// get reports a miss for both absent keys and Redis failures; the caller
// falls through to the API either way.
func (c *replyCache) get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *replyCache) set(ctx context.Context, key, reply string) error {
	return c.rdb.Set(ctx, key, reply, c.ttl).Err()
}
