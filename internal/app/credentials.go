package app

import (
	"context"
	"errors"

	"github.com/seungho-m/jikgwan/internal/repositories/credential"
)

// credentialSource adapts the credential repository to what the session
// transport needs. A missing token reads as empty rather than an error;
// the transport treats empty as logged-out.
type credentialSource struct {
	repo credential.Repository
}

func (c *credentialSource) AccessToken(ctx context.Context) (string, error) {
	tokens, err := c.repo.GetTokens(ctx)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return tokens.AccessToken, nil
}

func (c *credentialSource) RefreshToken(ctx context.Context) (string, error) {
	tokens, err := c.repo.GetTokens(ctx)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return tokens.RefreshToken, nil
}

func (c *credentialSource) StoreAccessToken(ctx context.Context, token string) error {
	return c.repo.SaveAccessToken(ctx, &credential.SaveAccessTokenInput{AccessToken: token})
}

func (c *credentialSource) ClearCredentials(ctx context.Context) error {
	return c.repo.Clear(ctx)
}
