package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestCredentialsComplete(t *testing.T) {
	tests := []struct {
		name     string
		creds    *Credentials
		expected bool
	}{
		{
			name: "oauth2 complete",
			creds: &Credentials{
				AuthMethod:   AuthMethodOAuth2,
				ClientID:     "client",
				ClientSecret: "secret",
				RefreshToken: "refresh",
			},
			expected: true,
		},
		{
			name: "oauth2 missing refresh token",
			creds: &Credentials{
				AuthMethod:   AuthMethodOAuth2,
				ClientID:     "client",
				ClientSecret: "secret",
			},
			expected: false,
		},
		{
			name:     "api key complete",
			creds:    &Credentials{AuthMethod: AuthMethodAPIKey, APIKey: "key"},
			expected: true,
		},
		{
			name:     "api key empty",
			creds:    &Credentials{AuthMethod: AuthMethodAPIKey},
			expected: false,
		},
		{
			name:     "basic complete",
			creds:    &Credentials{AuthMethod: AuthMethodBasic, Username: "u", Password: "p"},
			expected: true,
		},
		{
			name:     "basic missing password",
			creds:    &Credentials{AuthMethod: AuthMethodBasic, Username: "u"},
			expected: false,
		},
		{
			name:     "nil credentials",
			creds:    nil,
			expected: false,
		},
		{
			name:     "unknown method",
			creds:    &Credentials{AuthMethod: AuthMethod("saml")},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.creds.Complete() != tt.expected {
				t.Errorf("expected Complete() = %v", tt.expected)
			}
		})
	}
}

func TestCredentialsIsExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	if (&Credentials{TokenExpiry: &past}).IsExpired() != true {
		t.Error("past expiry must report expired")
	}
	if (&Credentials{TokenExpiry: &future}).IsExpired() != false {
		t.Error("future expiry must not report expired")
	}
	if (&Credentials{}).IsExpired() {
		t.Error("missing expiry must not report expired")
	}
}

func TestCredentialsSecretsNeverSerialized(t *testing.T) {
	creds := &Credentials{
		ID:           "cred-1",
		AuthMethod:   AuthMethodOAuth2,
		ClientID:     "client",
		ClientSecret: "topsecret",
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		APIKey:       "api-key",
		Password:     "password",
	}

	data, err := json.Marshal(creds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, secret := range []string{"topsecret", "access-token", "refresh-token", "api-key", "password"} {
		if strings.Contains(string(data), secret) {
			t.Errorf("serialized credentials leak %q", secret)
		}
	}
}
