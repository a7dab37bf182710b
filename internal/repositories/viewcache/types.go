package viewcache

import (
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds configuration for the redis view cache
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// TTL is how long a cached view stays fresh; zero disables expiry
	TTL time.Duration
}

// PutInput contains the view to cache
type PutInput struct {
	// Key is the view key, from one of the key builders
	Key string

	// Value is the view payload; it is stored as JSON
	Value interface{}
}

// GetInput identifies the view to load
type GetInput struct {
	// Key is the view key
	Key string
}

// InvalidateInput lists the key prefixes to sweep
type InvalidateInput struct {
	// Prefixes are swept with a SCAN per prefix
	Prefixes []string
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func itoa64(n int64) string {
	return strconv.FormatInt(n, 10)
}
