package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisContextKeyPrefix = "anonctx:"

// RedisContextStore keeps anonymous contexts in redis so they survive process
// restarts. Entries expire through redis TTLs.
type RedisContextStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisContextStore wraps an existing redis client.
func NewRedisContextStore(rdb *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{rdb: rdb, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, clientID string) (Context, bool, error) {
	raw, err := s.rdb.Get(ctx, redisContextKeyPrefix+clientID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Context{}, false, nil
		}
		return Context{}, false, fmt.Errorf("failed to get context %s: %w", clientID, err)
	}

	var c Context
	if err := json.Unmarshal(raw, &c); err != nil {
		return Context{}, false, fmt.Errorf("failed to decode context %s: %w", clientID, err)
	}
	return c, true, nil
}

func (s *RedisContextStore) Put(ctx context.Context, clientID string, c Context) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode context %s: %w", clientID, err)
	}
	if err := s.rdb.Set(ctx, redisContextKeyPrefix+clientID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store context %s: %w", clientID, err)
	}
	return nil
}
