package models

import (
	"time"
)

// MessageStatus is the delivery status the backend reports for a message
type MessageStatus string

const (
	// MessageStatusSent indicates the server accepted the message
	MessageStatusSent MessageStatus = "SENT"

	// MessageStatusDelivered indicates the recipient's client received it
	MessageStatusDelivered MessageStatus = "DELIVERED"

	// MessageStatusRead indicates the recipient opened the room after it arrived
	MessageStatusRead MessageStatus = "READ"
)

// RoomStatus is the lifecycle state of a chat room
type RoomStatus string

const (
	RoomStatusActive RoomStatus = "ACTIVE"
	RoomStatusClosed RoomStatus = "CLOSED"
)

// GatheringInfo is the reduced gathering payload embedded in a chat room
type GatheringInfo struct {
	ID       int64    `json:"id"`
	GameInfo GameInfo `json:"gameInfo"`
	HostID   int64    `json:"hostId"`
}

// ChatRoom is the 1:1 channel between a gathering's host and one applicant.
// It is created implicitly when an applicant requests to join a gathering
// that has no existing room, and is immutable afterwards except for
// read state and the last-message pointer.
type ChatRoom struct {
	// ID is the server-assigned room identifier
	ID int64 `json:"id"`

	// GatheringID is the gathering this room belongs to
	GatheringID int64 `json:"gatheringId"`

	// GatheringInfo carries the game metadata for the room header
	GatheringInfo GatheringInfo `json:"gatheringInfo"`

	// Participants are the two users in the room
	Participants []User `json:"participants"`

	// HostID is the gathering host
	HostID int64 `json:"hostId"`

	// ApplicantID is the user who requested to join
	ApplicantID int64 `json:"applicantId"`

	// IsConfirmed reports whether the applicant has been confirmed
	IsConfirmed bool `json:"isConfirmed"`

	// Status is the room lifecycle state
	Status RoomStatus `json:"status,omitempty"`

	// LastMessage is the most recent message, for the room list
	LastMessage *Message `json:"lastMessage,omitempty"`

	// UnreadCount is the number of unread messages for the current user
	UnreadCount int `json:"unreadCount"`

	// CreatedAt is when the room was created
	CreatedAt time.Time `json:"createdAt"`
}

// Other returns the participant that is not the given user, for rendering
// the far side of a 1:1 room.
func (r *ChatRoom) Other(userID int64) *User {
	if r == nil {
		return nil
	}
	for i := range r.Participants {
		if r.Participants[i].ID != userID {
			return &r.Participants[i]
		}
	}
	return nil
}

// RoomSummary is the chat-list view of one room: the last message and how
// many messages arrived since the user last opened it. It is client-local
// state, rebuilt from the server roster and advanced by accepted messages.
type RoomSummary struct {
	// RoomID is the room this summary describes
	RoomID int64 `json:"roomId"`

	// LastMessage is the most recent accepted message, if any
	LastMessage *Message `json:"lastMessage,omitempty"`

	// UnreadCount is the number of messages accepted since the last read
	UnreadCount int `json:"unreadCount"`
}

// Message is one chat message in a room. The server assigns the ID and the
// timestamp; the client never displays a message the server has not accepted.
type Message struct {
	// ID is the server-assigned message identifier
	ID int64 `json:"id"`

	// ChatRoomID is the room the message belongs to
	ChatRoomID int64 `json:"chatRoomId"`

	// SenderID is the user who sent the message
	SenderID int64 `json:"senderId"`

	// Content is the message text
	Content string `json:"content"`

	// Status is the optional delivery status
	Status MessageStatus `json:"status,omitempty"`

	// SentAt is the server-assigned timestamp
	SentAt time.Time `json:"sentAt"`
}
