package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/seungho-m/jikgwan/internal/models"
)

// Fixed storage key names. The prefix matches what older clients used, so a
// session stored by one build survives an upgrade.
const (
	accessTokenKey  = "jikgwan_accessToken"
	refreshTokenKey = "jikgwan_refreshToken"
	tokenTypeKey    = "jikgwan_tokenType"
	userKey         = "jikgwan_user"
)

// ErrNotFound is returned when no credentials are stored
var ErrNotFound = errors.New("no stored credentials")

// redisRepository implements the Repository interface using redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new redis-backed credential repository
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
	}, nil
}

// SaveTokens stores the access/refresh token pair under the fixed keys
func (r *redisRepository) SaveTokens(ctx context.Context, input *SaveTokensInput) error {
	if input == nil || input.Tokens == nil {
		return errors.New("input and tokens cannot be nil")
	}

	if input.Tokens.AccessToken == "" || input.Tokens.RefreshToken == "" {
		return errors.New("token values cannot be empty")
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, accessTokenKey, input.Tokens.AccessToken, 0)
	pipe.Set(ctx, refreshTokenKey, input.Tokens.RefreshToken, 0)
	if input.Tokens.TokenType != "" {
		pipe.Set(ctx, tokenTypeKey, input.Tokens.TokenType, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	return nil
}

// GetTokens retrieves the stored token pair
func (r *redisRepository) GetTokens(ctx context.Context) (*models.TokenPair, error) {
	access, err := r.client.Get(ctx, accessTokenKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	refresh, err := r.client.Get(ctx, refreshTokenKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	tokenType, err := r.client.Get(ctx, tokenTypeKey).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get token type: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenType,
	}, nil
}

// SaveAccessToken overwrites only the access token
func (r *redisRepository) SaveAccessToken(ctx context.Context, input *SaveAccessTokenInput) error {
	if input == nil || input.AccessToken == "" {
		return errors.New("input and access token cannot be empty")
	}

	if err := r.client.Set(ctx, accessTokenKey, input.AccessToken, 0).Err(); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}

	return nil
}

// SaveUser stores the cached profile as JSON
func (r *redisRepository) SaveUser(ctx context.Context, input *SaveUserInput) error {
	if input == nil || input.User == nil {
		return errors.New("input and user cannot be nil")
	}

	userJSON, err := json.Marshal(input.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := r.client.Set(ctx, userKey, userJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// GetUser retrieves the cached profile
func (r *redisRepository) GetUser(ctx context.Context) (*models.User, error) {
	userJSON, err := r.client.Get(ctx, userKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

// Clear removes everything stored under the fixed keys
func (r *redisRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, accessTokenKey, refreshTokenKey, tokenTypeKey, userKey).Err(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	return nil
}
