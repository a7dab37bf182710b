package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/seungho-m/jikgwan/internal/models"
)

// ListGatheringsInput contains the list query: pagination, sort order and
// an optional team filter.
type ListGatheringsInput struct {
	Page int
	Size int
	Sort string
	Team string
}

// GatheringPage is one page of the gathering list
type GatheringPage struct {
	Content       []models.Gathering `json:"content"`
	TotalPages    int                `json:"totalPages"`
	TotalElements int                `json:"totalElements"`
	Number        int                `json:"number"`
	Size          int                `json:"size"`
	First         bool               `json:"first"`
	Last          bool               `json:"last"`
}

// CreateGatheringInput contains the fields of a new gathering
type CreateGatheringInput struct {
	GameDateTime    time.Time `json:"gameDateTime"`
	HomeTeam        string    `json:"homeTeam"`
	AwayTeam        string    `json:"awayTeam"`
	Stadium         string    `json:"stadium"`
	MeetingPlace    string    `json:"meetingPlace"`
	MaxParticipants int       `json:"maxParticipants"`
	Description     string    `json:"description"`
}

// ListGatherings fetches one page of gatherings
func (c *Client) ListGatherings(ctx context.Context, input *ListGatheringsInput) (*GatheringPage, error) {
	query := url.Values{}
	if input != nil {
		query.Set("page", strconv.Itoa(input.Page))
		if input.Size > 0 {
			query.Set("size", strconv.Itoa(input.Size))
		}
		if input.Sort != "" {
			query.Set("sort", input.Sort)
		}
		if input.Team != "" {
			query.Set("team", input.Team)
		}
	}

	var page GatheringPage
	if err := c.do(ctx, http.MethodGet, "/gatherings", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetGathering fetches one gathering's detail
func (c *Client) GetGathering(ctx context.Context, id int64) (*models.Gathering, error) {
	var gathering models.Gathering
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/gatherings/%d", id), nil, nil, &gathering); err != nil {
		return nil, err
	}
	return &gathering, nil
}

// CreateGathering creates a new gathering hosted by the signed-in user
func (c *Client) CreateGathering(ctx context.Context, input *CreateGatheringInput) (*models.Gathering, error) {
	var gathering models.Gathering
	if err := c.do(ctx, http.MethodPost, "/gatherings", nil, input, &gathering); err != nil {
		return nil, err
	}
	return &gathering, nil
}

// ConfirmParticipant appends a confirmed-participant record. Host only;
// the backend enforces authorization.
func (c *Client) ConfirmParticipant(ctx context.Context, gatheringID, userID int64) error {
	body := map[string]int64{"participantUserId": userID}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/gatherings/%d/confirm", gatheringID), nil, body, nil)
}

// CancelParticipant removes a confirmed-participant record. Host only.
func (c *Client) CancelParticipant(ctx context.Context, gatheringID, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/gatherings/%d/participants/%d", gatheringID, userID), nil, nil, nil)
}

// Participants lists a gathering's confirmed participants
func (c *Client) Participants(ctx context.Context, gatheringID int64) ([]models.ConfirmedParticipant, error) {
	var participants []models.ConfirmedParticipant
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/gatherings/%d/participants", gatheringID), nil, nil, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// MyParticipating lists the gatherings the user is confirmed in
func (c *Client) MyParticipating(ctx context.Context) ([]models.Gathering, error) {
	var gatherings []models.Gathering
	if err := c.do(ctx, http.MethodGet, "/gatherings/my-participating", nil, nil, &gatherings); err != nil {
		return nil, err
	}
	return gatherings, nil
}
