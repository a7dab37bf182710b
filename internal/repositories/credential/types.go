package credential

import (
	"github.com/redis/go-redis/v9"

	"github.com/seungho-m/jikgwan/internal/models"
)

// Config holds configuration for the redis credential repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// SaveTokensInput contains the token pair to persist
type SaveTokensInput struct {
	// Tokens is the pair issued by the auth service
	Tokens *models.TokenPair
}

// SaveAccessTokenInput contains the replacement access token
type SaveAccessTokenInput struct {
	// AccessToken is the newly minted access token
	AccessToken string
}

// SaveUserInput contains the profile to cache
type SaveUserInput struct {
	// User is the signed-in user's profile
	User *models.User
}
