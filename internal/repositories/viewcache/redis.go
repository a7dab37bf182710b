package viewcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no fresh view is cached under a key
var ErrMiss = errors.New("view not cached")

// redisRepository implements the Repository interface using redis
type redisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a new redis-backed view cache
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
		ttl:    cfg.TTL,
	}, nil
}

// Put stores a view under its key with the configured TTL
func (r *redisRepository) Put(ctx context.Context, input *PutInput) error {
	if input == nil || input.Key == "" {
		return errors.New("input and key cannot be empty")
	}

	viewJSON, err := json.Marshal(input.Value)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}

	if err := r.client.Set(ctx, input.Key, viewJSON, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache view: %w", err)
	}

	return nil
}

// Get loads a cached view into dest
func (r *redisRepository) Get(ctx context.Context, input *GetInput, dest interface{}) error {
	if input == nil || input.Key == "" {
		return errors.New("input and key cannot be empty")
	}

	viewJSON, err := r.client.Get(ctx, input.Key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrMiss
		}
		return fmt.Errorf("failed to get view: %w", err)
	}

	if err := json.Unmarshal([]byte(viewJSON), dest); err != nil {
		return fmt.Errorf("failed to unmarshal view: %w", err)
	}

	return nil
}

// Invalidate removes every key under each given prefix
func (r *redisRepository) Invalidate(ctx context.Context, input *InvalidateInput) error {
	if input == nil || len(input.Prefixes) == 0 {
		return errors.New("input and prefixes cannot be empty")
	}

	for _, prefix := range input.Prefixes {
		iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("failed to invalidate %s: %w", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan prefix %s: %w", prefix, err)
		}
	}

	return nil
}
