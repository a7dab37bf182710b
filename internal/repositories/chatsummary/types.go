package chatsummary

import (
	"github.com/redis/go-redis/v9"

	"github.com/seungho-m/jikgwan/internal/models"
)

// Config holds configuration for the redis chat summary repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// SetRoomsInput contains the fresh room roster from the server
type SetRoomsInput struct {
	// Rooms is the server's room listing; last message and unread counts
	// are taken from it as the new baseline
	Rooms []*models.ChatRoom
}

// ListRoomsOutput contains all known room summaries
type ListRoomsOutput struct {
	// Summaries is ordered by room ID
	Summaries []*models.RoomSummary
}

// GetSummaryInput identifies one room
type GetSummaryInput struct {
	// RoomID is the room to look up
	RoomID int64
}

// UpdateLastMessageInput contains the new last-message pointer
type UpdateLastMessageInput struct {
	// RoomID is the room to update
	RoomID int64

	// Message is the new last message
	Message *models.Message
}

// MarkReadInput identifies the room whose unread counter is zeroed
type MarkReadInput struct {
	// RoomID is the room that was opened
	RoomID int64
}
