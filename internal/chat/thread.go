// Package chat holds the message reconciliation core: merging the push
// channel and the synchronous fallback path into one ordered,
// duplicate-free sequence per open room.
package chat

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/seungho-m/jikgwan/internal/models"
)

// dedupWindow is how close two timestamps must be for the sender+content
// heuristic to treat two records as the same event. A message sent through
// the fallback path and echoed back through the push channel arrives as two
// structurally different payloads, so identity cannot rely on the server id
// alone.
const dedupWindow = time.Second

// Config holds configuration for a thread
type Config struct {
	// RoomID is the room this thread displays
	RoomID int64

	// OnAccept is invoked for every accepted non-duplicate message; the
	// chat list summary hangs off this hook. Optional.
	OnAccept func(msg models.Message)
}

// Thread is the ordered message list for one open chat room. Both delivery
// paths feed it: the push subscription and the HTTP fallback. The merge is
// append-only; a qualifying duplicate is dropped silently.
type Thread struct {
	mu       sync.Mutex
	roomID   int64
	messages []models.Message
	onAccept func(msg models.Message)
}

// NewThread creates a thread for one room
func NewThread(cfg *Config) (*Thread, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RoomID == 0 {
		return nil, errors.New("room ID cannot be empty")
	}

	return &Thread{
		roomID:   cfg.RoomID,
		onAccept: cfg.OnAccept,
	}, nil
}

// RoomID returns the room this thread displays
func (t *Thread) RoomID() int64 {
	return t.roomID
}

// Load replaces the list with the initial history page. The input order is
// not trusted; the page is sorted oldest first before display. Load does
// not fire OnAccept: history is already reflected in the room summaries.
func (t *Thread) Load(messages []models.Message) {
	sorted := make([]models.Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SentAt.Before(sorted[j].SentAt)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = sorted
}

// Add merges one arriving message, from either delivery path. It reports
// whether the message was appended; a qualifying duplicate is dropped.
// Arrivals after the initial load are assumed newer than everything held.
func (t *Thread) Add(msg models.Message) bool {
	t.mu.Lock()
	for i := range t.messages {
		if sameEvent(&t.messages[i], &msg) {
			t.mu.Unlock()
			return false
		}
	}
	t.messages = append(t.messages, msg)
	t.mu.Unlock()

	if t.onAccept != nil {
		t.onAccept(msg)
	}
	return true
}

// Messages returns a copy of the ordered list
func (t *Thread) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of displayed messages
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// sameEvent reports whether two records describe the same logical message:
// either the server assigned them the same id, or the same sender produced
// the same content within the dedup window.
func sameEvent(a, b *models.Message) bool {
	if a.ID != 0 && a.ID == b.ID {
		return true
	}

	if a.SenderID != b.SenderID || a.Content != b.Content {
		return false
	}

	delta := a.SentAt.Sub(b.SentAt)
	if delta < 0 {
		delta = -delta
	}
	return delta < dedupWindow
}
