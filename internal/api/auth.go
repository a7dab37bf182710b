package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/seungho-m/jikgwan/internal/models"
)

// LoginInput contains the login credentials
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupInput contains the fields of the signup form. The profile image is
// optional and rides along as a multipart file part.
type SignupInput struct {
	Email           string
	Password        string
	Nickname        string
	Gender          models.Gender
	AgeRange        models.AgeRange
	SupportingTeams []string

	// ProfileImage is the raw image; empty means no image part
	ProfileImage []byte

	// ProfileImageName is the original file name of the image
	ProfileImageName string
}

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, input *LoginInput) (*models.TokenPair, error) {
	var tokens models.TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, input, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Signup registers a new account
func (c *Client) Signup(ctx context.Context, input *SignupInput) (*models.User, error) {
	form := func(w io.Writer) (string, error) {
		mw := multipart.NewWriter(w)

		fields := map[string]string{
			"email":    input.Email,
			"password": input.Password,
			"nickname": input.Nickname,
			"gender":   string(input.Gender),
			"ageRange": string(input.AgeRange),
		}
		for name, value := range fields {
			if err := mw.WriteField(name, value); err != nil {
				return "", err
			}
		}
		// Each team is its own form value
		for _, team := range input.SupportingTeams {
			if err := mw.WriteField("supportingTeams", team); err != nil {
				return "", err
			}
		}

		if len(input.ProfileImage) > 0 {
			name := input.ProfileImageName
			if name == "" {
				name = "profile"
			}
			part, err := mw.CreateFormFile("profileImage", name)
			if err != nil {
				return "", err
			}
			if _, err := part.Write(input.ProfileImage); err != nil {
				return "", err
			}
		}

		if err := mw.Close(); err != nil {
			return "", err
		}
		return mw.FormDataContentType(), nil
	}

	var user models.User
	if err := c.doMultipart(ctx, http.MethodPost, "/auth/signup", form, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the session server-side
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}
