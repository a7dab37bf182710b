package credential

import (
	"context"

	"github.com/seungho-m/jikgwan/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/seungho-m/jikgwan/internal/repositories/credential Repository

// Repository persists the session credentials and the cached profile in
// durable local storage. Tokens are stored as raw strings under fixed key
// names, with no expiry metadata alongside them.
type Repository interface {
	// SaveTokens stores the access/refresh token pair
	SaveTokens(ctx context.Context, input *SaveTokensInput) error

	// GetTokens retrieves the stored token pair
	GetTokens(ctx context.Context) (*models.TokenPair, error)

	// SaveAccessToken overwrites only the access token, used after a refresh
	SaveAccessToken(ctx context.Context, input *SaveAccessTokenInput) error

	// SaveUser stores the cached profile of the signed-in user
	SaveUser(ctx context.Context, input *SaveUserInput) error

	// GetUser retrieves the cached profile
	GetUser(ctx context.Context) (*models.User, error)

	// Clear removes all stored credentials and the cached profile
	Clear(ctx context.Context) error
}
