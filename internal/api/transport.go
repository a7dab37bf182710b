package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
)

// CredentialSource provides the stored credentials the transport attaches
// and rotates. The session manager owns the backing storage.
type CredentialSource interface {
	// AccessToken returns the current access token, empty when logged out
	AccessToken(ctx context.Context) (string, error)

	// RefreshToken returns the stored long-lived credential
	RefreshToken(ctx context.Context) (string, error)

	// StoreAccessToken replaces the access token after a refresh
	StoreAccessToken(ctx context.Context, token string) error

	// ClearCredentials removes both stored credentials
	ClearCredentials(ctx context.Context) error
}

// TransportConfig holds configuration for the session transport
type TransportConfig struct {
	// BaseURL is the API root, used to reach the refresh endpoint
	BaseURL string

	// Credentials is the credential source
	Credentials CredentialSource

	// Base is the underlying round tripper; nil means http.DefaultTransport
	Base http.RoundTripper

	// OnLogout is invoked after the credentials have been cleared because
	// the refresh path failed; it flips the session to logged-out
	OnLogout func()
}

// sessionTransport attaches the bearer credential to every outbound request
// and transparently refreshes it at most once per request. A request whose
// retry still comes back 401 forces a logout: both credentials are cleared
// and OnLogout fires. The refresh-then-retry sequence is linear within one
// RoundTrip call, so no request can loop through refresh twice.
type sessionTransport struct {
	baseURL     string
	credentials CredentialSource
	base        http.RoundTripper
	onLogout    func()

	// refreshMu collapses concurrent refresh attempts into one
	refreshMu sync.Mutex
}

// NewSessionTransport creates the round tripper that implements the
// session/token lifecycle.
func NewSessionTransport(cfg *TransportConfig) (http.RoundTripper, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL cannot be empty")
	}
	if cfg.Credentials == nil {
		return nil, errors.New("credential source cannot be nil")
	}

	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return &sessionTransport{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		credentials: cfg.Credentials,
		base:        base,
		onLogout:    cfg.OnLogout,
	}, nil
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	authed := req.Clone(ctx)
	token, err := t.credentials.AccessToken(ctx)
	if err == nil && token != "" {
		authed.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(authed)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || t.isAuthEndpoint(req.URL.Path) {
		return resp, nil
	}

	newToken, refreshErr := t.refresh(ctx, token)
	if refreshErr != nil {
		log.Printf("token refresh failed: %v", refreshErr)
		t.forceLogout(ctx)
		return resp, nil
	}

	// Retry the original request exactly once with the new credential
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry := req.Clone(ctx)
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, fmt.Errorf("failed to replay request body: %w", bodyErr)
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+newToken)

	retryResp, err := t.base.RoundTrip(retry)
	if err != nil {
		return nil, err
	}

	if retryResp.StatusCode == http.StatusUnauthorized {
		t.forceLogout(ctx)
	}

	return retryResp, nil
}

// refresh exchanges the stored refresh token for a new access token. When
// several requests hit 401 at once, the first performs the exchange and the
// rest reuse the rotated token.
func (t *sessionTransport) refresh(ctx context.Context, staleToken string) (string, error) {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	// Another request may have already rotated the token while this one
	// waited on the lock
	current, err := t.credentials.AccessToken(ctx)
	if err == nil && current != "" && current != staleToken {
		return current, nil
	}

	refreshToken, err := t.credentials.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("no refresh token: %w", err)
	}
	if refreshToken == "" {
		return "", errors.New("no refresh token")
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodeResponse(resp.StatusCode, body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("refresh response carried no access token")
	}

	if err := t.credentials.StoreAccessToken(ctx, out.AccessToken); err != nil {
		return "", err
	}

	return out.AccessToken, nil
}

func (t *sessionTransport) forceLogout(ctx context.Context) {
	if err := t.credentials.ClearCredentials(ctx); err != nil {
		log.Printf("failed to clear credentials: %v", err)
	}
	if t.onLogout != nil {
		t.onLogout()
	}
}

// isAuthEndpoint reports whether the path belongs to the auth flows whose
// 401s mean "bad credentials", not "stale access token".
func (t *sessionTransport) isAuthEndpoint(path string) bool {
	return strings.Contains(path, "/auth/login") ||
		strings.Contains(path, "/auth/signup") ||
		strings.Contains(path, "/auth/refresh")
}
