package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs to reach the Jikgwan backend,
// the push broker, and the local redis instance used for durable state.
type Config struct {
	// APIBaseURL is the base URL of the HTTP/JSON API
	APIBaseURL string

	// WSURL is the websocket endpoint of the push broker
	WSURL string

	// RedisAddr is the address of the redis instance backing local stores
	RedisAddr string

	// RedisPassword is the optional redis password
	RedisPassword string

	// RequestTimeout bounds every HTTP request
	RequestTimeout time.Duration

	// ReconnectBase is the first reconnect delay for the push channel
	ReconnectBase time.Duration

	// ReconnectCap is the largest reconnect delay
	ReconnectCap time.Duration

	// ReconnectMaxAttempts bounds reconnect attempts before the connection
	// is reported as terminally disconnected
	ReconnectMaxAttempts int

	// ViewCacheTTL is how long cached views stay fresh
	ViewCacheTTL time.Duration
}

// Load reads configuration from the environment, with a .env file as an
// optional source.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		APIBaseURL:           getEnv("JIKGWAN_API_URL", "http://localhost:8080/api"),
		WSURL:                getEnv("JIKGWAN_WS_URL", "ws://localhost:8080/ws"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ReconnectBase:        getEnvDuration("RECONNECT_BASE", 3*time.Second),
		ReconnectCap:         getEnvDuration("RECONNECT_CAP", 30*time.Second),
		ReconnectMaxAttempts: getEnvInt("RECONNECT_MAX_ATTEMPTS", 5),
		ViewCacheTTL:         getEnvDuration("VIEW_CACHE_TTL", 30*time.Second),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid value for %s: %q, using default", key, value)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid value for %s: %q, using default", key, value)
		return fallback
	}
	return d
}
