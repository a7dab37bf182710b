package session

import (
	"context"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/seungho-m/jikgwan/internal/services/session Service

// Service manages the sign-in session: authentication, the persisted
// credential pair and the cached profile of the signed-in user.
type Service interface {
	// Login authenticates with email and password, persists the issued
	// tokens and caches the fetched profile
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Signup registers a new account
	Signup(ctx context.Context, input *SignupInput) (*SignupOutput, error)

	// Logout ends the session and clears all persisted credentials
	Logout(ctx context.Context) error

	// Restore rebuilds the session from persisted credentials on startup
	Restore(ctx context.Context) (*RestoreOutput, error)

	// UpdateProfile changes the signed-in user's profile
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UpdateProfileOutput, error)

	// CurrentUser returns the cached profile of the signed-in user
	CurrentUser(ctx context.Context) (*CurrentUserOutput, error)
}
