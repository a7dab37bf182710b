package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seungho-m/jikgwan/internal/models"
)

var base = time.Date(2026, 5, 16, 18, 30, 0, 0, time.UTC)

func message(id, sender int64, content string, at time.Time) models.Message {
	return models.Message{
		ID:         id,
		ChatRoomID: 7,
		SenderID:   sender,
		Content:    content,
		SentAt:     at,
	}
}

func newThread(t *testing.T) *Thread {
	t.Helper()
	thread, err := NewThread(&Config{RoomID: 7})
	require.NoError(t, err)
	return thread
}

func TestLoadSortsOldestFirst(t *testing.T) {
	thread := newThread(t)

	// History pages arrive newest first
	thread.Load([]models.Message{
		message(3, 1, "third", base.Add(2*time.Minute)),
		message(1, 1, "first", base),
		message(2, 2, "second", base.Add(time.Minute)),
	})

	got := thread.Messages()
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
	assert.Equal(t, "third", got[2].Content)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].SentAt.Before(got[i-1].SentAt))
	}
}

func TestAddAppendsNonDuplicate(t *testing.T) {
	thread := newThread(t)
	thread.Load([]models.Message{message(1, 1, "hello", base)})

	added := thread.Add(message(2, 2, "hi back", base.Add(time.Second)))
	assert.True(t, added)
	assert.Equal(t, 2, thread.Len())
}

func TestDuplicatePairsKeepExactlyOne(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Message
		dup  bool
	}{
		{
			name: "same server id",
			a:    message(10, 1, "hello", base),
			b:    message(10, 1, "hello", base.Add(3*time.Second)),
			dup:  true,
		},
		{
			name: "fallback echo within window",
			a:    message(10, 1, "hello", base),
			b:    message(11, 1, "hello", base.Add(500*time.Millisecond)),
			dup:  true,
		},
		{
			name: "same content outside window",
			a:    message(10, 1, "hello", base),
			b:    message(11, 1, "hello", base.Add(2*time.Second)),
			dup:  false,
		},
		{
			name: "same content different sender",
			a:    message(10, 1, "hello", base),
			b:    message(11, 2, "hello", base.Add(100*time.Millisecond)),
			dup:  false,
		},
		{
			name: "window is symmetric",
			a:    message(10, 1, "hello", base.Add(500*time.Millisecond)),
			b:    message(11, 1, "hello", base),
			dup:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thread := newThread(t)
			require.True(t, thread.Add(tt.a))

			added := thread.Add(tt.b)
			if tt.dup {
				assert.False(t, added)
				assert.Equal(t, 1, thread.Len())
			} else {
				assert.True(t, added)
				assert.Equal(t, 2, thread.Len())
			}
		})
	}
}

func TestFallbackThenPushEchoShowsOneBubble(t *testing.T) {
	thread := newThread(t)
	thread.Load(nil)

	// Push channel is down; "hello" goes out via the fallback and the
	// server's accepted record is merged locally
	accepted := message(41, 1, "hello", base)
	require.True(t, thread.Add(accepted))

	// Push channel reconnects and echoes the same message 400ms later,
	// as a structurally different payload without a matching id
	echo := message(0, 1, "hello", base.Add(400*time.Millisecond))
	assert.False(t, thread.Add(echo))

	got := thread.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Content)
}

func TestOnAcceptFiresOnlyForAcceptedMessages(t *testing.T) {
	var accepted []models.Message
	thread, err := NewThread(&Config{
		RoomID:   7,
		OnAccept: func(msg models.Message) { accepted = append(accepted, msg) },
	})
	require.NoError(t, err)

	// History load is not a side effect
	thread.Load([]models.Message{message(1, 1, "old", base)})
	assert.Empty(t, accepted)

	thread.Add(message(2, 2, "new", base.Add(time.Minute)))
	thread.Add(message(2, 2, "new", base.Add(time.Minute))) // duplicate

	require.Len(t, accepted, 1)
	assert.Equal(t, "new", accepted[0].Content)
}

func TestNewThreadValidation(t *testing.T) {
	_, err := NewThread(nil)
	assert.Error(t, err)

	_, err = NewThread(&Config{})
	assert.Error(t, err)
}
