package api

import (
	"context"
	"net/http"

	"github.com/seungho-m/jikgwan/internal/models"
)

// UpdateProfileInput contains the profile fields to change. Nil/empty
// fields are omitted and left untouched server-side.
type UpdateProfileInput struct {
	Nickname        string          `json:"nickname,omitempty"`
	Gender          models.Gender   `json:"gender,omitempty"`
	AgeRange        models.AgeRange `json:"ageRange,omitempty"`
	SupportingTeams []string        `json:"supportingTeams,omitempty"`
	ProfileImageURL string          `json:"profileImageUrl,omitempty"`
}

// Me fetches the signed-in user's profile
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the signed-in user's profile
func (c *Client) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/users/me", nil, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// MyMeetings lists the gatherings the user hosts
func (c *Client) MyMeetings(ctx context.Context) ([]models.Gathering, error) {
	var gatherings []models.Gathering
	if err := c.do(ctx, http.MethodGet, "/users/me/meetings", nil, nil, &gatherings); err != nil {
		return nil, err
	}
	return gatherings, nil
}

// MyApplications lists the gatherings the user has applied to
func (c *Client) MyApplications(ctx context.Context) ([]models.Gathering, error) {
	var gatherings []models.Gathering
	if err := c.do(ctx, http.MethodGet, "/users/me/applications", nil, nil, &gatherings); err != nil {
		return nil, err
	}
	return gatherings, nil
}
