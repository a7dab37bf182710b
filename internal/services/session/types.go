package session

import (
	"context"

	"github.com/seungho-m/jikgwan/internal/api"
	"github.com/seungho-m/jikgwan/internal/common/clock"
	"github.com/seungho-m/jikgwan/internal/models"
	"github.com/seungho-m/jikgwan/internal/repositories/credential"
)

// AuthAPI is the slice of the HTTP client the session service drives.
// *api.Client satisfies it.
type AuthAPI interface {
	Login(ctx context.Context, input *api.LoginInput) (*models.TokenPair, error)
	Signup(ctx context.Context, input *api.SignupInput) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, input *api.UpdateProfileInput) (*models.User, error)
}

// Config holds configuration for the session service
type Config struct {
	// Repository persists tokens and the cached profile
	Repository credential.Repository

	// API is the HTTP client for auth and profile calls
	API AuthAPI

	// Clock provides time abstraction for token expiry checks
	Clock clock.Clock
}

// LoginInput contains the login form
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput contains the signed-in user and the issued tokens
type LoginOutput struct {
	User   *models.User
	Tokens *models.TokenPair
}

// SignupInput contains the signup form
type SignupInput struct {
	Email           string
	Password        string
	Nickname        string
	Gender          models.Gender
	AgeRange        models.AgeRange
	SupportingTeams []string

	// ProfileImage is the raw image bytes; empty means no image
	ProfileImage []byte

	// ProfileImageName is the original file name of the image
	ProfileImageName string
}

// SignupOutput contains the created account
type SignupOutput struct {
	User *models.User
}

// RestoreOutput reports the result of rebuilding a session on startup
type RestoreOutput struct {
	// Authenticated is false when no usable credentials were found
	Authenticated bool

	// User is set when Authenticated is true
	User *models.User
}

// UpdateProfileInput contains the profile fields to change; zero values
// are left untouched
type UpdateProfileInput struct {
	Nickname        string
	Gender          models.Gender
	AgeRange        models.AgeRange
	SupportingTeams []string
	ProfileImageURL string
}

// UpdateProfileOutput contains the updated profile
type UpdateProfileOutput struct {
	User *models.User
}

// CurrentUserOutput contains the cached profile and its completeness
type CurrentUserOutput struct {
	User *models.User

	// ProfileComplete is true when the profile has everything required
	// to host or join a gathering
	ProfileComplete bool
}
