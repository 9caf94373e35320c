package domain

import "time"

// TokenPair is what a successful authentication or refresh returns: a
// short-lived access token and a longer-lived refresh token, both signed.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime
}

// RevokedToken is a denylist entry. Created on logout and on refresh
// rotation, never mutated, and safe to prune once ExpiresAt has passed
// since verification independently re-checks the claim's own expiry.
type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
	CreatedAt time.Time
}
