package domain

import "time"

// AuthMethod defines how to authenticate with a channel
type AuthMethod string

const (
	AuthMethodOAuth2 AuthMethod = "oauth2"
	AuthMethodAPIKey AuthMethod = "api_key"
	AuthMethodBasic  AuthMethod = "basic"
)

// Credentials stores authentication material for a channel configuration.
// Secret fields are never serialized; the postgres adapter encrypts them
// at rest.
type Credentials struct {
	ID          string      `json:"id"`
	ChannelCode ChannelCode `json:"channel_code"`
	AuthMethod  AuthMethod  `json:"auth_method"`

	// OAuth2 fields
	ClientID     string     `json:"client_id,omitempty"`
	ClientSecret string     `json:"-"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	TokenURL     string     `json:"token_url,omitempty"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`

	// API key channels
	APIKey string `json:"-"`

	// Basic auth channels
	Username string `json:"-"`
	Password string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Complete reports whether the credentials carry enough material for the
// declared auth method. Incomplete credentials are an INVALID_CONFIG health
// state, not an auth failure.
func (c *Credentials) Complete() bool {
	if c == nil {
		return false
	}
	switch c.AuthMethod {
	case AuthMethodOAuth2:
		return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	case AuthMethodAPIKey:
		return c.APIKey != ""
	case AuthMethodBasic:
		return c.Username != "" && c.Password != ""
	}
	return false
}

// IsExpired checks if the OAuth access token has expired
func (c *Credentials) IsExpired() bool {
	if c.TokenExpiry == nil {
		return false
	}
	return time.Now().After(*c.TokenExpiry)
}

// NeedsRefresh checks if tokens should be refreshed (within 5 min of expiry)
func (c *Credentials) NeedsRefresh() bool {
	if c.TokenExpiry == nil {
		return false
	}
	return time.Now().Add(5 * time.Minute).After(*c.TokenExpiry)
}
