package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	thread "github.com/seungho-m/jikgwan/internal/chat"
	"github.com/seungho-m/jikgwan/internal/models"
	"github.com/seungho-m/jikgwan/internal/realtime"
)

// RoomSession is one open room: a dedup thread fed by the push channel,
// with sends that prefer the push channel and fall back to plain HTTP.
// The broker echoes pushed sends back on the topic; fallback sends are
// folded into the thread from the HTTP response, and the dedup window
// absorbs the echo if the push channel comes back mid-flight.
type RoomSession struct {
	roomID  int64
	api     ChatAPI
	thread  *thread.Thread
	conn    *realtime.Connection
	service *service

	mu     sync.Mutex
	closed bool
}

// RoomID returns the room this session is attached to
func (rs *RoomSession) RoomID() int64 {
	return rs.roomID
}

// State returns the push channel state
func (rs *RoomSession) State() realtime.State {
	return rs.conn.State()
}

// Messages returns the thread so far, oldest first
func (rs *RoomSession) Messages() []models.Message {
	return rs.thread.Messages()
}

// Send delivers one message, preferring the push channel. ErrNotConnected
// from the push path is not an error for the caller; the HTTP fallback
// carries the message instead and its response lands in the thread
// directly.
func (rs *RoomSession) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}

	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return ErrSessionClosed
	}
	rs.mu.Unlock()

	err := rs.conn.Send(content)
	if err == nil {
		return nil
	}
	if !errors.Is(err, realtime.ErrNotConnected) {
		return fmt.Errorf("push send failed for room %d: %w", rs.roomID, err)
	}

	msg, err := rs.api.SendMessage(ctx, rs.roomID, content)
	if err != nil {
		return fmt.Errorf("fallback send failed for room %d: %w", rs.roomID, err)
	}
	rs.thread.Add(*msg)
	return nil
}

// MarkRead zeroes the room's unread counter
func (rs *RoomSession) MarkRead(ctx context.Context) error {
	return rs.service.MarkRead(ctx, &MarkReadInput{RoomID: rs.roomID})
}

// Close tears down the push channel. The session cannot be reused.
func (rs *RoomSession) Close() {
	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return
	}
	rs.closed = true
	rs.mu.Unlock()

	rs.conn.Disconnect()
}
