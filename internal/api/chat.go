package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/seungho-m/jikgwan/internal/models"
)

// MessagePage is one page of a room's message history
type MessagePage struct {
	Content       []models.Message `json:"content"`
	TotalPages    int              `json:"totalPages"`
	TotalElements int              `json:"totalElements"`
	Number        int              `json:"number"`
	Size          int              `json:"size"`
	First         bool             `json:"first"`
	Last          bool             `json:"last"`
}

// CreateRoom creates, or returns the existing, 1:1 room between the
// signed-in user and the gathering's host.
func (c *Client) CreateRoom(ctx context.Context, gatheringID int64) (*models.ChatRoom, error) {
	body := map[string]int64{"gatheringId": gatheringID}
	var room models.ChatRoom
	if err := c.do(ctx, http.MethodPost, "/chat/rooms", nil, body, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Rooms lists the signed-in user's chat rooms
func (c *Client) Rooms(ctx context.Context) ([]models.ChatRoom, error) {
	// This endpoint wraps the list one level deeper than the others
	var out struct {
		ChatRooms []models.ChatRoom `json:"chatRooms"`
	}
	if err := c.do(ctx, http.MethodGet, "/chat/rooms", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.ChatRooms, nil
}

// Room fetches one room's detail
func (c *Client) Room(ctx context.Context, roomID int64) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chat/rooms/%d", roomID), nil, nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Messages fetches one page of a room's history
func (c *Client) Messages(ctx context.Context, roomID int64, page, size int) (*MessagePage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if size <= 0 {
		size = 50
	}
	query.Set("size", strconv.Itoa(size))

	var out MessagePage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chat/rooms/%d/messages", roomID), query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage submits a message over the synchronous fallback path and
// returns the server-accepted record.
func (c *Client) SendMessage(ctx context.Context, roomID int64, content string) (*models.Message, error) {
	body := map[string]string{"content": content}
	var message models.Message
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/chat/rooms/%d/messages", roomID), nil, body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkRead reports that the user has read the room up to now
func (c *Client) MarkRead(ctx context.Context, roomID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/chat/rooms/%d/read", roomID), nil, nil, nil)
}
