package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seungho-m/jikgwan/internal/api"
	"github.com/seungho-m/jikgwan/internal/config"
	"github.com/seungho-m/jikgwan/internal/repositories/chatsummary"
	"github.com/seungho-m/jikgwan/internal/repositories/credential"
	"github.com/seungho-m/jikgwan/internal/repositories/viewcache"
	chatService "github.com/seungho-m/jikgwan/internal/services/chat"
	gatheringService "github.com/seungho-m/jikgwan/internal/services/gathering"
	sessionService "github.com/seungho-m/jikgwan/internal/services/session"
)

// Config holds configuration for the application container
type Config struct {
	// Config is the loaded runtime configuration
	Config *config.Config

	// OnLogout fires when the transport force-logs-out after a failed
	// token refresh
	OnLogout func()
}

// App wires the repositories, the HTTP client with its session transport
// and the three services into one container.
type App struct {
	Redis *redis.Client

	Credentials credential.Repository
	Summaries   chatsummary.Repository
	ViewCache   viewcache.Repository

	API *api.Client

	Session    sessionService.Service
	Gatherings gatheringService.Service
	Chat       chatService.Service
}

// New builds the container. The redis connection is verified up front;
// everything else is wired lazily enough that the backend may be down.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Config == nil {
		return nil, errors.New("runtime configuration cannot be nil")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Config.RedisAddr,
		Password: cfg.Config.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	credentials, err := credential.NewRedis(&credential.Config{RedisClient: redisClient})
	if err != nil {
		return nil, fmt.Errorf("failed to create credential repository: %w", err)
	}

	summaries, err := chatsummary.NewRedis(&chatsummary.Config{RedisClient: redisClient})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat summary repository: %w", err)
	}

	views, err := viewcache.NewRedis(&viewcache.Config{
		RedisClient: redisClient,
		TTL:         cfg.Config.ViewCacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create view cache: %w", err)
	}

	transport, err := api.NewSessionTransport(&api.TransportConfig{
		BaseURL:     cfg.Config.APIBaseURL,
		Credentials: &credentialSource{repo: credentials},
		OnLogout:    cfg.OnLogout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session transport: %w", err)
	}

	client, err := api.New(&api.Config{
		BaseURL:   cfg.Config.APIBaseURL,
		Timeout:   cfg.Config.RequestTimeout,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	session, err := sessionService.New(&sessionService.Config{
		Repository: credentials,
		API:        client,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	gatherings, err := gatheringService.New(&gatheringService.Config{
		API:       client,
		ViewCache: views,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gathering service: %w", err)
	}

	chat, err := chatService.New(&chatService.Config{
		API:                  client,
		Summaries:            summaries,
		ViewCache:            views,
		Credentials:          credentials,
		WSURL:                cfg.Config.WSURL,
		ReconnectBase:        cfg.Config.ReconnectBase,
		ReconnectCap:         cfg.Config.ReconnectCap,
		MaxReconnectAttempts: cfg.Config.ReconnectMaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat service: %w", err)
	}

	return &App{
		Redis:       redisClient,
		Credentials: credentials,
		Summaries:   summaries,
		ViewCache:   views,
		API:         client,
		Session:     session,
		Gatherings:  gatherings,
		Chat:        chat,
	}, nil
}

// Close releases the container's connections
func (a *App) Close() error {
	return a.Redis.Close()
}
