package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	thread "github.com/seungho-m/jikgwan/internal/chat"
	"github.com/seungho-m/jikgwan/internal/models"
	"github.com/seungho-m/jikgwan/internal/realtime"
	"github.com/seungho-m/jikgwan/internal/repositories/chatsummary"
	"github.com/seungho-m/jikgwan/internal/repositories/credential"
	"github.com/seungho-m/jikgwan/internal/repositories/viewcache"
)

type service struct {
	api         ChatAPI
	summaries   chatsummary.Repository
	cache       viewcache.Repository
	credentials credential.Repository
	cfg         Config
}

// New creates a new chat service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.API == nil {
		return nil, errors.New("API client cannot be nil")
	}
	if cfg.Summaries == nil {
		return nil, errors.New("summaries repository cannot be nil")
	}
	if cfg.ViewCache == nil {
		return nil, errors.New("view cache cannot be nil")
	}
	if cfg.Credentials == nil {
		return nil, errors.New("credentials repository cannot be nil")
	}
	if cfg.WSURL == "" {
		return nil, errors.New("websocket URL cannot be empty")
	}

	return &service{
		api:         cfg.API,
		summaries:   cfg.Summaries,
		cache:       cfg.ViewCache,
		credentials: cfg.Credentials,
		cfg:         *cfg,
	}, nil
}

// RequestJoin opens, or returns the existing, room for a gathering and
// drops the cached roster so the new room shows up.
func (s *service) RequestJoin(ctx context.Context, input *RequestJoinInput) (*RequestJoinOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	room, err := s.api.CreateRoom(ctx, input.GatheringID)
	if err != nil {
		return nil, fmt.Errorf("failed to open room for gathering %d: %w", input.GatheringID, err)
	}

	s.invalidateRoster(ctx)

	return &RequestJoinOutput{Room: room}, nil
}

// Rooms serves the roster through the view cache. A network fetch also
// resets the summary baseline: the server's listing is authoritative for
// what exists and what was read elsewhere.
func (s *service) Rooms(ctx context.Context) (*RoomsOutput, error) {
	key := viewcache.ChatRoomsKey()

	var rooms []models.ChatRoom
	fromCache := false

	err := s.cache.Get(ctx, &viewcache.GetInput{Key: key}, &rooms)
	if err == nil {
		fromCache = true
	} else {
		if !errors.Is(err, viewcache.ErrMiss) {
			log.Printf("chat: view cache read failed for %s: %v", key, err)
		}

		rooms, err = s.api.Rooms(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list rooms: %w", err)
		}

		roster := make([]*models.ChatRoom, len(rooms))
		for i := range rooms {
			roster[i] = &rooms[i]
		}
		if err := s.summaries.SetRooms(ctx, &chatsummary.SetRoomsInput{Rooms: roster}); err != nil {
			return nil, fmt.Errorf("failed to reset room summaries: %w", err)
		}

		if err := s.cache.Put(ctx, &viewcache.PutInput{Key: key, Value: rooms}); err != nil {
			log.Printf("chat: view cache write failed for %s: %v", key, err)
		}
	}

	listed, err := s.summaries.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list room summaries: %w", err)
	}

	return &RoomsOutput{
		Rooms:     rooms,
		Summaries: listed.Summaries,
		FromCache: fromCache,
	}, nil
}

// Room fetches one room's detail
func (s *service) Room(ctx context.Context, input *RoomInput) (*RoomOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	room, err := s.api.Room(ctx, input.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room %d: %w", input.RoomID, err)
	}
	return &RoomOutput{Room: room}, nil
}

// History fetches one page of messages and orders it oldest first, the
// way the screen renders it.
func (s *service) History(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	page, err := s.api.Messages(ctx, input.RoomID, input.Page, input.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for room %d: %w", input.RoomID, err)
	}

	messages := make([]models.Message, len(page.Content))
	copy(messages, page.Content)
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].SentAt.Equal(messages[j].SentAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].SentAt.Before(messages[j].SentAt)
	})

	return &HistoryOutput{
		Messages:      messages,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}, nil
}

// Open starts a live session: history is loaded into the dedup thread,
// the push channel is dialed with the stored access token and the room is
// marked read. The session works even when the dial fails; sends just
// take the HTTP fallback until a reconnect lands.
func (s *service) Open(ctx context.Context, input *OpenInput) (*RoomSession, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	t, err := thread.NewThread(&thread.Config{
		RoomID: input.RoomID,
		OnAccept: func(msg models.Message) {
			s.recordAccepted(msg)
			if input.OnMessage != nil {
				input.OnMessage(msg)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	page, err := s.api.Messages(ctx, input.RoomID, 0, input.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for room %d: %w", input.RoomID, err)
	}
	t.Load(page.Content)

	tokens, err := s.credentials.GetTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials for push channel: %w", err)
	}

	conn, err := realtime.New(&realtime.Config{
		URL:                  s.cfg.WSURL,
		RoomID:               input.RoomID,
		Token:                tokens.AccessToken,
		Dialer:               s.cfg.Dialer,
		ReconnectBase:        s.cfg.ReconnectBase,
		ReconnectCap:         s.cfg.ReconnectCap,
		MaxReconnectAttempts: s.cfg.MaxReconnectAttempts,
		OnMessage: func(msg models.Message) {
			t.Add(msg)
		},
		OnConnected: func() {
			if input.OnStateChange != nil {
				input.OnStateChange(realtime.StateConnected)
			}
		},
		OnDisconnected: func() {
			if input.OnStateChange != nil {
				input.OnStateChange(realtime.StateDisconnected)
			}
		},
		OnError: input.OnError,
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Connect(ctx); err != nil {
		// The reconnect loop owns recovery from here; sends fall back
		// to HTTP in the meantime
		log.Printf("chat: push channel dial failed for room %d: %v", input.RoomID, err)
	}

	if err := s.MarkRead(ctx, &MarkReadInput{RoomID: input.RoomID}); err != nil {
		log.Printf("chat: failed to mark room %d read on open: %v", input.RoomID, err)
	}

	return &RoomSession{
		roomID:  input.RoomID,
		api:     s.api,
		thread:  t,
		conn:    conn,
		service: s,
	}, nil
}

// SendFallback delivers one message over plain HTTP and folds the
// accepted message into the room's summary.
func (s *service) SendFallback(ctx context.Context, input *SendFallbackInput) (*SendFallbackOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrEmptyMessage
	}

	msg, err := s.api.SendMessage(ctx, input.RoomID, input.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to send message to room %d: %w", input.RoomID, err)
	}

	s.recordAccepted(*msg)

	return &SendFallbackOutput{Message: msg}, nil
}

// MarkRead zeroes the unread counter locally and server-side, and drops
// the cached roster that renders it.
func (s *service) MarkRead(ctx context.Context, input *MarkReadInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}

	if err := s.api.MarkRead(ctx, input.RoomID); err != nil {
		return fmt.Errorf("failed to mark room %d read: %w", input.RoomID, err)
	}
	if err := s.summaries.MarkRead(ctx, &chatsummary.MarkReadInput{RoomID: input.RoomID}); err != nil {
		return fmt.Errorf("failed to reset unread counter for room %d: %w", input.RoomID, err)
	}

	s.invalidateRoster(ctx)
	return nil
}

// recordAccepted advances the room's last-message pointer. The open room
// is being read, so the unread counter stays put.
func (s *service) recordAccepted(msg models.Message) {
	err := s.summaries.UpdateLastMessage(context.Background(), &chatsummary.UpdateLastMessageInput{
		RoomID:  msg.ChatRoomID,
		Message: &msg,
	})
	if err != nil {
		log.Printf("chat: failed to update summary for room %d: %v", msg.ChatRoomID, err)
	}
}

func (s *service) invalidateRoster(ctx context.Context) {
	err := s.cache.Invalidate(ctx, &viewcache.InvalidateInput{
		Prefixes: []string{viewcache.ChatRoomsKey()},
	})
	if err != nil {
		log.Printf("chat: roster invalidation failed: %v", err)
	}
}
