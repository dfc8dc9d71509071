package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore implements driven.CredentialsStore using PostgreSQL.
// Secret fields are encrypted into a single BYTEA column; the row itself
// carries only the identifiers needed for lookups.
type CredentialsStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewCredentialsStore creates a new CredentialsStore
func NewCredentialsStore(db *DB, encryptor *SecretEncryptor) *CredentialsStore {
	return &CredentialsStore{db: db, encryptor: encryptor}
}

// credentialSecrets is the encrypted portion of domain.Credentials. The
// domain type hides these fields from JSON, so they are carried separately
// through the encryptor.
type credentialSecrets struct {
	ClientID     string     `json:"client_id,omitempty"`
	ClientSecret string     `json:"client_secret,omitempty"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenURL     string     `json:"token_url,omitempty"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
	APIKey       string     `json:"api_key,omitempty"`
	Username     string     `json:"username,omitempty"`
	Password     string     `json:"password,omitempty"`
}

// Get retrieves credentials by ID
func (s *CredentialsStore) Get(ctx context.Context, id string) (*domain.Credentials, error) {
	query := `
		SELECT id, channel_code, auth_method, secret, created_at, updated_at
		FROM channel_credentials
		WHERE id = $1
	`

	var creds domain.Credentials
	var blob []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&creds.ID,
		&creds.ChannelCode,
		&creds.AuthMethod,
		&blob,
		&creds.CreatedAt,
		&creds.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var secrets credentialSecrets
	if err := s.encryptor.Decrypt(blob, &secrets); err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials %s: %w", id, err)
	}

	creds.ClientID = secrets.ClientID
	creds.ClientSecret = secrets.ClientSecret
	creds.AccessToken = secrets.AccessToken
	creds.RefreshToken = secrets.RefreshToken
	creds.TokenURL = secrets.TokenURL
	creds.TokenExpiry = secrets.TokenExpiry
	creds.APIKey = secrets.APIKey
	creds.Username = secrets.Username
	creds.Password = secrets.Password

	return &creds, nil
}

// Save creates or updates credentials
func (s *CredentialsStore) Save(ctx context.Context, creds *domain.Credentials) error {
	now := time.Now()
	if creds.CreatedAt.IsZero() {
		creds.CreatedAt = now
	}
	creds.UpdatedAt = now

	blob, err := s.encryptor.Encrypt(credentialSecrets{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenURL:     creds.TokenURL,
		TokenExpiry:  creds.TokenExpiry,
		APIKey:       creds.APIKey,
		Username:     creds.Username,
		Password:     creds.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	query := `
		INSERT INTO channel_credentials (id, channel_code, auth_method, secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			channel_code = EXCLUDED.channel_code,
			auth_method = EXCLUDED.auth_method,
			secret = EXCLUDED.secret,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		creds.ID,
		string(creds.ChannelCode),
		string(creds.AuthMethod),
		blob,
		creds.CreatedAt,
		creds.UpdatedAt,
	)
	return err
}

// Delete removes credentials
func (s *CredentialsStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM channel_credentials WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
