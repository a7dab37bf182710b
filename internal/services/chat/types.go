package chat

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seungho-m/jikgwan/internal/api"
	"github.com/seungho-m/jikgwan/internal/models"
	"github.com/seungho-m/jikgwan/internal/realtime"
	"github.com/seungho-m/jikgwan/internal/repositories/chatsummary"
	"github.com/seungho-m/jikgwan/internal/repositories/credential"
	"github.com/seungho-m/jikgwan/internal/repositories/viewcache"
)

// ChatAPI is the slice of the HTTP client the chat service drives.
// *api.Client satisfies it.
type ChatAPI interface {
	CreateRoom(ctx context.Context, gatheringID int64) (*models.ChatRoom, error)
	Rooms(ctx context.Context) ([]models.ChatRoom, error)
	Room(ctx context.Context, roomID int64) (*models.ChatRoom, error)
	Messages(ctx context.Context, roomID int64, page, size int) (*api.MessagePage, error)
	SendMessage(ctx context.Context, roomID int64, content string) (*models.Message, error)
	MarkRead(ctx context.Context, roomID int64) error
}

// Config holds configuration for the chat service
type Config struct {
	// API is the HTTP client for chat calls
	API ChatAPI

	// Summaries keeps the per-room last-message and unread state
	Summaries chatsummary.Repository

	// ViewCache holds the cached room roster view
	ViewCache viewcache.Repository

	// Credentials supplies the bearer token for the push channel handshake
	Credentials credential.Repository

	// WSURL is the broker websocket endpoint
	WSURL string

	// Dialer overrides the websocket dialer; nil means the default
	Dialer *websocket.Dialer

	// ReconnectBase, ReconnectCap and MaxReconnectAttempts tune the push
	// channel backoff; zero values take the realtime defaults
	ReconnectBase        time.Duration
	ReconnectCap         time.Duration
	MaxReconnectAttempts int
}

// RequestJoinInput identifies the gathering to chat about
type RequestJoinInput struct {
	GatheringID int64
}

// RequestJoinOutput contains the opened room
type RequestJoinOutput struct {
	Room *models.ChatRoom
}

// RoomsOutput contains the room roster with unread summaries
type RoomsOutput struct {
	Rooms []models.ChatRoom

	// Summaries is ordered by room ID
	Summaries []*models.RoomSummary

	// FromCache is true when the roster was served from the view cache
	FromCache bool
}

// RoomInput identifies one room
type RoomInput struct {
	RoomID int64
}

// RoomOutput contains one room's detail
type RoomOutput struct {
	Room *models.ChatRoom
}

// HistoryInput contains the history query
type HistoryInput struct {
	RoomID int64
	Page   int
	Size   int
}

// HistoryOutput contains one page of messages, oldest first
type HistoryOutput struct {
	Messages      []models.Message
	TotalPages    int
	TotalElements int
}

// OpenInput configures a live session on one room
type OpenInput struct {
	RoomID int64

	// HistorySize bounds the initial history load; zero means the
	// server default page size
	HistorySize int

	// OnMessage receives every newly accepted message, push or fallback
	OnMessage func(msg models.Message)

	// OnStateChange reports push channel state transitions
	OnStateChange func(state realtime.State)

	// OnError receives push channel failures
	OnError func(err error)
}

// SendFallbackInput contains one message to send over HTTP
type SendFallbackInput struct {
	RoomID  int64
	Content string
}

// SendFallbackOutput contains the server-accepted message
type SendFallbackOutput struct {
	Message *models.Message
}

// MarkReadInput identifies the room that was read
type MarkReadInput struct {
	RoomID int64
}
