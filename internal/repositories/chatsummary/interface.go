package chatsummary

import (
	"context"

	"github.com/seungho-m/jikgwan/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/seungho-m/jikgwan/internal/repositories/chatsummary Repository

// Repository keeps the room-list summaries the chat list screen renders:
// per room, the last-message pointer and the unread counter. It is updated
// as a side effect of every accepted message, independent of whichever room
// is currently open.
type Repository interface {
	// SetRooms replaces the room roster from a fresh server listing
	SetRooms(ctx context.Context, input *SetRoomsInput) error

	// ListRooms returns all known room summaries
	ListRooms(ctx context.Context) (*ListRoomsOutput, error)

	// GetSummary returns the summary for one room
	GetSummary(ctx context.Context, input *GetSummaryInput) (*models.RoomSummary, error)

	// UpdateLastMessage sets the last-message pointer without touching unread
	UpdateLastMessage(ctx context.Context, input *UpdateLastMessageInput) error

	// MarkRead zeroes the unread counter for a room
	MarkRead(ctx context.Context, input *MarkReadInput) error
}
