package models

import (
	"time"
)

// GameInfo describes the baseball game a gathering is tied to
type GameInfo struct {
	// GameDateTime is the first pitch time
	GameDateTime time.Time `json:"gameDateTime"`

	// HomeTeam is the KBO team code of the home side
	HomeTeam string `json:"homeTeam"`

	// AwayTeam is the KBO team code of the away side
	AwayTeam string `json:"awayTeam"`

	// Stadium is the stadium code where the game is played
	Stadium string `json:"stadium"`
}

// GatheringHost is the reduced host profile embedded in gathering payloads
type GatheringHost struct {
	ID              int64    `json:"id"`
	Nickname        string   `json:"nickname"`
	ProfileImageURL string   `json:"profileImageUrl,omitempty"`
	Gender          Gender   `json:"gender,omitempty"`
	AgeRange        AgeRange `json:"ageRange,omitempty"`
}

// GatheringParticipant is a confirmed participant as embedded in a gathering
type GatheringParticipant struct {
	UserID          int64  `json:"userId"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// ConfirmedParticipant is the join record between a gathering and a user.
// Created and removed only by the gathering's host.
type ConfirmedParticipant struct {
	// UserID is the confirmed user
	UserID int64 `json:"userId"`

	// Nickname is the confirmed user's display name
	Nickname string `json:"nickname"`

	// ProfileImageURL points at the user's profile image
	ProfileImageURL string `json:"profileImageUrl,omitempty"`

	// ConfirmedAt is when the host confirmed the user
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// Gathering is a proposed meetup tied to one baseball game. The backend is
// authoritative; the client never mutates a gathering directly, it only
// invokes host operations and re-reads.
type Gathering struct {
	// ID is the server-assigned gathering identifier
	ID int64 `json:"id"`

	// GameInfo is the game this gathering is for
	GameInfo GameInfo `json:"gameInfo"`

	// MeetingPlace is the free-text meetup location near the stadium
	MeetingPlace string `json:"meetingPlace"`

	// MaxParticipants caps the confirmed participant count
	MaxParticipants int `json:"maxParticipants"`

	// Description is the host's free-text pitch
	Description string `json:"description"`

	// Host is the user who created the gathering
	Host GatheringHost `json:"host"`

	// Participants are the confirmed participants
	Participants []GatheringParticipant `json:"participants"`

	// ChatRoomID is the current user's 1:1 room with the host, when one exists
	ChatRoomID int64 `json:"chatRoomId,omitempty"`

	// CreatedAt is when the gathering was created
	CreatedAt time.Time `json:"createdAt"`
}

// IsHost reports whether the given user created this gathering
func (g *Gathering) IsHost(userID int64) bool {
	return g != nil && g.Host.ID == userID
}

// IsFull reports whether the confirmed participant list has reached capacity
func (g *Gathering) IsFull() bool {
	return g != nil && g.MaxParticipants > 0 && len(g.Participants) >= g.MaxParticipants
}
