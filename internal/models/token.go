package models

// TokenPair is the credential pair issued by the auth service on login and
// rotated on refresh. Both values are opaque to the client and stored as raw
// strings, without extra encoding or expiry metadata.
type TokenPair struct {
	// AccessToken is the short-lived bearer credential attached to requests
	AccessToken string `json:"accessToken"`

	// RefreshToken is the long-lived credential used to mint a new access token
	RefreshToken string `json:"refreshToken"`

	// TokenType is the authorization scheme, normally "Bearer"
	TokenType string `json:"tokenType,omitempty"`
}
