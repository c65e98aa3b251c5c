package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "scrape:progress:"

// RedisStore persists runs in Redis with a per-session TTL, for
// deployments where polls may land on a different instance than the one
// running the scrape.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Set(ctx context.Context, sessionID string, run Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("progress: marshal run: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("progress: store run: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (Run, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Idle(), nil
	}
	if err != nil {
		return Idle(), fmt.Errorf("progress: load run: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Idle(), fmt.Errorf("progress: decode run: %w", err)
	}
	return run, nil
}
