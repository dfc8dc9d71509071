package driven

import (
	"context"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// TokenProvider provides access tokens for channel API authentication.
// Providers are created fresh per run so a stale credential edit never
// outlives the run that loaded it.
type TokenProvider interface {
	// GetAccessToken returns a valid access token.
	// For OAuth2 channels this refreshes expired tokens; for API-key
	// channels it returns the stored key.
	GetAccessToken(ctx context.Context) (string, error)

	// GetCredentials returns the full credentials.
	// Use GetAccessToken for most operations - this is for special cases
	// like basic-auth channels.
	GetCredentials(ctx context.Context) (*domain.Credentials, error)

	// AuthMethod returns the authentication method.
	AuthMethod() domain.AuthMethod
}

// TokenProviderFactory creates run-scoped token providers for a
// configuration. It resolves config.CredentialID to stored credentials and
// wraps them per auth method.
type TokenProviderFactory interface {
	// Create creates a TokenProvider for the given configuration.
	Create(ctx context.Context, config *domain.ChannelConfiguration) (TokenProvider, error)
}

// StaticTokenProvider implements TokenProvider for non-OAuth credentials
// (API keys, basic auth).
type StaticTokenProvider struct {
	creds *domain.Credentials
}

// NewStaticTokenProvider creates a token provider for static credentials.
func NewStaticTokenProvider(creds *domain.Credentials) *StaticTokenProvider {
	return &StaticTokenProvider{creds: creds}
}

// GetAccessToken returns the API key.
func (p *StaticTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	switch p.creds.AuthMethod {
	case domain.AuthMethodAPIKey:
		return p.creds.APIKey, nil
	case domain.AuthMethodBasic:
		// Basic-auth channels read the username/password pair through
		// GetCredentials instead.
		return "", nil
	default:
		return "", nil
	}
}

// GetCredentials returns the full credentials.
func (p *StaticTokenProvider) GetCredentials(ctx context.Context) (*domain.Credentials, error) {
	return p.creds, nil
}

// AuthMethod returns the authentication method.
func (p *StaticTokenProvider) AuthMethod() domain.AuthMethod {
	return p.creds.AuthMethod
}
