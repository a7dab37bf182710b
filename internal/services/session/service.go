package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/golang-jwt/jwt/v5"

	"github.com/seungho-m/jikgwan/internal/api"
	"github.com/seungho-m/jikgwan/internal/common/clock"
	"github.com/seungho-m/jikgwan/internal/repositories/credential"
)

type service struct {
	repository credential.Repository
	api        AuthAPI
	clock      clock.Clock
}

// New creates a new session service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Repository == nil {
		return nil, errors.New("repository cannot be nil")
	}
	if cfg.API == nil {
		return nil, errors.New("API client cannot be nil")
	}

	svc := &service{
		repository: cfg.Repository,
		api:        cfg.API,
		clock:      cfg.Clock,
	}
	if svc.clock == nil {
		svc.clock = clock.New()
	}
	return svc, nil
}

// Login authenticates, persists the issued tokens and caches the profile.
// The profile fetch is part of the login: if it fails the half-built
// session is torn down again.
func (s *service) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	tokens, err := s.api.Login(ctx, &api.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := s.repository.SaveTokens(ctx, &credential.SaveTokensInput{Tokens: tokens}); err != nil {
		return nil, fmt.Errorf("failed to persist tokens: %w", err)
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		// Without a profile there is no session to keep
		if clearErr := s.repository.Clear(ctx); clearErr != nil {
			log.Printf("session: failed to clear credentials after profile fetch error: %v", clearErr)
		}
		return nil, fmt.Errorf("failed to fetch profile after login: %w", err)
	}

	if err := s.repository.SaveUser(ctx, &credential.SaveUserInput{User: user}); err != nil {
		return nil, fmt.Errorf("failed to cache profile: %w", err)
	}

	return &LoginOutput{User: user, Tokens: tokens}, nil
}

// Signup registers a new account. The caller signs in separately afterwards.
func (s *service) Signup(ctx context.Context, input *SignupInput) (*SignupOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := validateNickname(input.Nickname); err != nil {
		return nil, err
	}
	if err := validateTeams(input.SupportingTeams); err != nil {
		return nil, err
	}

	user, err := s.api.Signup(ctx, &api.SignupInput{
		Email:            input.Email,
		Password:         input.Password,
		Nickname:         input.Nickname,
		Gender:           input.Gender,
		AgeRange:         input.AgeRange,
		SupportingTeams:  input.SupportingTeams,
		ProfileImage:     input.ProfileImage,
		ProfileImageName: input.ProfileImageName,
	})
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}

	return &SignupOutput{User: user}, nil
}

// Logout always clears the local credentials, even when the server-side
// invalidation fails.
func (s *service) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		log.Printf("session: server-side logout failed: %v", err)
	}
	if err := s.repository.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Restore rebuilds the session from persisted credentials. Credentials
// whose refresh token has already expired are cleared without a network
// round trip; otherwise the profile fetch decides.
func (s *service) Restore(ctx context.Context) (*RestoreOutput, error) {
	tokens, err := s.repository.GetTokens(ctx)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return &RestoreOutput{Authenticated: false}, nil
		}
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}

	if s.tokenExpired(tokens.RefreshToken) {
		if err := s.repository.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear expired credentials: %w", err)
		}
		return &RestoreOutput{Authenticated: false}, nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		// The token pair did not survive; end the session
		if clearErr := s.repository.Clear(ctx); clearErr != nil {
			log.Printf("session: failed to clear credentials after restore error: %v", clearErr)
		}
		return &RestoreOutput{Authenticated: false}, nil
	}

	if err := s.repository.SaveUser(ctx, &credential.SaveUserInput{User: user}); err != nil {
		return nil, fmt.Errorf("failed to cache profile: %w", err)
	}

	return &RestoreOutput{Authenticated: true, User: user}, nil
}

// UpdateProfile changes the profile and refreshes the cached copy
func (s *service) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UpdateProfileOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if input.Nickname != "" {
		if err := validateNickname(input.Nickname); err != nil {
			return nil, err
		}
	}
	if err := validateTeams(input.SupportingTeams); err != nil {
		return nil, err
	}

	user, err := s.api.UpdateProfile(ctx, &api.UpdateProfileInput{
		Nickname:        input.Nickname,
		Gender:          input.Gender,
		AgeRange:        input.AgeRange,
		SupportingTeams: input.SupportingTeams,
		ProfileImageURL: input.ProfileImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := s.repository.SaveUser(ctx, &credential.SaveUserInput{User: user}); err != nil {
		return nil, fmt.Errorf("failed to cache profile: %w", err)
	}

	return &UpdateProfileOutput{User: user}, nil
}

// CurrentUser returns the cached profile without a network round trip
func (s *service) CurrentUser(ctx context.Context) (*CurrentUserOutput, error) {
	user, err := s.repository.GetUser(ctx)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, ErrNotSignedIn
		}
		return nil, fmt.Errorf("failed to load cached profile: %w", err)
	}

	return &CurrentUserOutput{
		User:            user,
		ProfileComplete: user.ProfileComplete(),
	}, nil
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; only the server can verify, the client just avoids a doomed
// round trip. Unparseable tokens are left for the server to judge.
func (s *service) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(s.clock.Now())
}
