package chat

import (
	"context"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/seungho-m/jikgwan/internal/services/chat Service

// Service handles the 1:1 rooms between hosts and applicants: the room
// roster with its unread summaries, message history, and live sessions
// that prefer the push channel and fall back to plain HTTP sends.
type Service interface {
	// RequestJoin opens, or returns the existing, room between the
	// signed-in user and the gathering's host
	RequestJoin(ctx context.Context, input *RequestJoinInput) (*RequestJoinOutput, error)

	// Rooms lists the user's rooms with their unread summaries
	Rooms(ctx context.Context) (*RoomsOutput, error)

	// Room fetches one room's detail
	Room(ctx context.Context, input *RoomInput) (*RoomOutput, error)

	// History fetches one page of a room's messages, oldest first
	History(ctx context.Context, input *HistoryInput) (*HistoryOutput, error)

	// Open starts a live session on a room: history is loaded, the push
	// channel is dialed and the room is marked read
	Open(ctx context.Context, input *OpenInput) (*RoomSession, error)

	// SendFallback delivers one message over plain HTTP, bypassing the
	// push channel entirely
	SendFallback(ctx context.Context, input *SendFallbackInput) (*SendFallbackOutput, error)

	// MarkRead zeroes the room's unread counter, locally and server-side
	MarkRead(ctx context.Context, input *MarkReadInput) error
}
