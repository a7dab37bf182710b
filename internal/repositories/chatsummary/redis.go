package chatsummary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/seungho-m/jikgwan/internal/models"
)

const (
	// Key prefixes for redis
	summaryKeyPrefix = "chat_summary:"
	roomSetKey       = "chat_summary_rooms"
)

// ErrRoomNotFound is returned when no summary exists for a room
var ErrRoomNotFound = errors.New("room summary not found")

// redisRepository implements the Repository interface using redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new redis-backed chat summary repository
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

func summaryKey(roomID int64) string {
	return fmt.Sprintf("%s%d", summaryKeyPrefix, roomID)
}

func (r *redisRepository) saveSummary(ctx context.Context, pipe redis.Pipeliner, summary *models.RoomSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	pipe.Set(ctx, summaryKey(summary.RoomID), summaryJSON, 0)
	pipe.SAdd(ctx, roomSetKey, strconv.FormatInt(summary.RoomID, 10))
	return nil
}

func (r *redisRepository) getSummary(ctx context.Context, roomID int64) (*models.RoomSummary, error) {
	summaryJSON, err := r.client.Get(ctx, summaryKey(roomID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	var summary models.RoomSummary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &summary, nil
}

// SetRooms replaces the roster with the server's listing
func (r *redisRepository) SetRooms(ctx context.Context, input *SetRoomsInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}

	// Drop the previous roster so rooms closed server-side disappear
	oldIDs, err := r.client.SMembers(ctx, roomSetKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read room set: %w", err)
	}

	pipe := r.client.Pipeline()
	for _, id := range oldIDs {
		pipe.Del(ctx, summaryKeyPrefix+id)
	}
	pipe.Del(ctx, roomSetKey)

	for _, room := range input.Rooms {
		if room == nil {
			continue
		}
		summary := &models.RoomSummary{
			RoomID:      room.ID,
			LastMessage: room.LastMessage,
			UnreadCount: room.UnreadCount,
		}
		if err := r.saveSummary(ctx, pipe, summary); err != nil {
			return err
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set rooms: %w", err)
	}

	return nil
}

// ListRooms returns all known summaries ordered by room ID
func (r *redisRepository) ListRooms(ctx context.Context) (*ListRoomsOutput, error) {
	ids, err := r.client.SMembers(ctx, roomSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read room set: %w", err)
	}

	summaries := make([]*models.RoomSummary, 0, len(ids))
	for _, id := range ids {
		roomID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		summary, err := r.getSummary(ctx, roomID)
		if err != nil {
			if errors.Is(err, ErrRoomNotFound) {
				continue
			}
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].RoomID < summaries[j].RoomID
	})

	return &ListRoomsOutput{Summaries: summaries}, nil
}

// GetSummary returns the summary for one room
func (r *redisRepository) GetSummary(ctx context.Context, input *GetSummaryInput) (*models.RoomSummary, error) {
	if input == nil || input.RoomID == 0 {
		return nil, errors.New("input and room ID cannot be empty")
	}

	return r.getSummary(ctx, input.RoomID)
}

// UpdateLastMessage sets the last-message pointer without touching unread
func (r *redisRepository) UpdateLastMessage(ctx context.Context, input *UpdateLastMessageInput) error {
	if input == nil || input.Message == nil {
		return errors.New("input and message cannot be nil")
	}

	summary, err := r.getSummary(ctx, input.RoomID)
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			return err
		}
		summary = &models.RoomSummary{RoomID: input.RoomID}
	}

	summary.LastMessage = input.Message

	pipe := r.client.Pipeline()
	if err := r.saveSummary(ctx, pipe, summary); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update last message: %w", err)
	}

	return nil
}

// MarkRead zeroes the unread counter for a room
func (r *redisRepository) MarkRead(ctx context.Context, input *MarkReadInput) error {
	if input == nil || input.RoomID == 0 {
		return errors.New("input and room ID cannot be empty")
	}

	summary, err := r.getSummary(ctx, input.RoomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			// Nothing tracked yet, nothing to zero
			return nil
		}
		return err
	}

	summary.UnreadCount = 0

	pipe := r.client.Pipeline()
	if err := r.saveSummary(ctx, pipe, summary); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark read: %w", err)
	}

	return nil
}
