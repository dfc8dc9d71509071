package channels

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.TokenProviderFactory = (*TokenFactory)(nil)
	_ driven.TokenProvider        = (*OAuthTokenProvider)(nil)
)

// TokenFactory creates run-scoped token providers from stored credentials.
type TokenFactory struct {
	credentials driven.CredentialsStore
}

// NewTokenFactory creates a token provider factory.
func NewTokenFactory(credentials driven.CredentialsStore) *TokenFactory {
	return &TokenFactory{credentials: credentials}
}

// Create resolves the configuration's credentials and wraps them per auth
// method. OAuth2 credentials get a refreshing provider; everything else is
// served statically.
func (f *TokenFactory) Create(ctx context.Context, config *domain.ChannelConfiguration) (driven.TokenProvider, error) {
	if config.CredentialID == "" {
		return nil, fmt.Errorf("%w: configuration %s has no credentials", domain.ErrInvalidConfiguration, config.ID)
	}

	creds, err := f.credentials.Get(ctx, config.CredentialID)
	if err != nil {
		return nil, fmt.Errorf("load credentials %s: %w", config.CredentialID, err)
	}
	if !creds.Complete() {
		return nil, fmt.Errorf("%w: credentials %s are incomplete", domain.ErrInvalidConfiguration, creds.ID)
	}

	if creds.AuthMethod == domain.AuthMethodOAuth2 {
		return NewOAuthTokenProvider(ctx, creds), nil
	}
	return driven.NewStaticTokenProvider(creds), nil
}

// OAuthTokenProvider implements TokenProvider for OAuth2 channels. It wraps
// an oauth2.TokenSource so the access token is refreshed on expiry and
// cached for the rest of the run.
type OAuthTokenProvider struct {
	creds  *domain.Credentials
	source oauth2.TokenSource
}

// NewOAuthTokenProvider creates a refreshing token provider. The context
// bounds the provider's refresh calls, so pass the run context.
func NewOAuthTokenProvider(ctx context.Context, creds *domain.Credentials) *OAuthTokenProvider {
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  creds.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	if creds.TokenExpiry != nil {
		token.Expiry = *creds.TokenExpiry
	}

	return &OAuthTokenProvider{
		creds:  creds,
		source: conf.TokenSource(ctx, token),
	}
}

// GetAccessToken returns a valid access token, refreshing if needed.
// A rejected refresh token surfaces as domain.ErrAuthFailure.
func (p *OAuthTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	token, err := p.source.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			code := retrieveErr.Response.StatusCode
			if code == http.StatusBadRequest || code == http.StatusUnauthorized || code == http.StatusForbidden {
				return "", fmt.Errorf("%w: token refresh rejected: %v", domain.ErrAuthFailure, err)
			}
		}
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	return token.AccessToken, nil
}

// GetCredentials returns the full credentials.
func (p *OAuthTokenProvider) GetCredentials(ctx context.Context) (*domain.Credentials, error) {
	return p.creds, nil
}

// AuthMethod returns the authentication method.
func (p *OAuthTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodOAuth2
}
