package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore implements driven.ConfigStore using PostgreSQL
type ConfigStore struct {
	db *DB
}

// NewConfigStore creates a new ConfigStore
func NewConfigStore(db *DB) *ConfigStore {
	return &ConfigStore{db: db}
}

const configColumns = `id, customer_id, channel_code, display_name, base_url, credential_id, max_chunk_size, include_audit_enrollments, active, extra, created_at, updated_at, created_by`

// Get retrieves a configuration by ID
func (s *ConfigStore) Get(ctx context.Context, id string) (*domain.ChannelConfiguration, error) {
	query := `SELECT ` + configColumns + ` FROM channel_configurations WHERE id = $1`

	config, err := scanConfiguration(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return config, nil
}

// ListActive retrieves all active configurations for a customer
func (s *ConfigStore) ListActive(ctx context.Context, customerID string) ([]*domain.ChannelConfiguration, error) {
	query := `
		SELECT ` + configColumns + `
		FROM channel_configurations
		WHERE customer_id = $1 AND active = TRUE
		ORDER BY channel_code, display_name
	`
	return s.list(ctx, query, customerID)
}

// List retrieves all configurations for a customer, active or not
func (s *ConfigStore) List(ctx context.Context, customerID string) ([]*domain.ChannelConfiguration, error) {
	query := `
		SELECT ` + configColumns + `
		FROM channel_configurations
		WHERE customer_id = $1
		ORDER BY channel_code, display_name
	`
	return s.list(ctx, query, customerID)
}

func (s *ConfigStore) list(ctx context.Context, query string, customerID string) ([]*domain.ChannelConfiguration, error) {
	rows, err := s.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.ChannelConfiguration
	for rows.Next() {
		config, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return configs, nil
}

// Save creates or updates a configuration
func (s *ConfigStore) Save(ctx context.Context, config *domain.ChannelConfiguration) error {
	now := time.Now()
	if config.CreatedAt.IsZero() {
		config.CreatedAt = now
	}
	config.UpdatedAt = now

	extra := config.Extra
	if extra == nil {
		extra = map[string]string{}
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("failed to marshal extra settings: %w", err)
	}

	query := `
		INSERT INTO channel_configurations (` + configColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			channel_code = EXCLUDED.channel_code,
			display_name = EXCLUDED.display_name,
			base_url = EXCLUDED.base_url,
			credential_id = EXCLUDED.credential_id,
			max_chunk_size = EXCLUDED.max_chunk_size,
			include_audit_enrollments = EXCLUDED.include_audit_enrollments,
			active = EXCLUDED.active,
			extra = EXCLUDED.extra,
			updated_at = EXCLUDED.updated_at
	`

	var credentialID *string
	if config.CredentialID != "" {
		credentialID = &config.CredentialID
	}

	_, err = s.db.ExecContext(ctx, query,
		config.ID,
		config.CustomerID,
		string(config.ChannelCode),
		config.DisplayName,
		config.BaseURL,
		NullString(credentialID),
		config.MaxChunkSize,
		config.IncludeAuditEnrollments,
		config.Active,
		extraJSON,
		config.CreatedAt,
		config.UpdatedAt,
		config.CreatedBy,
	)
	return err
}

// Deactivate marks a configuration inactive
func (s *ConfigStore) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE channel_configurations SET active = FALSE, updated_at = NOW() WHERE id = $1`

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

func scanConfiguration(row scanner) (*domain.ChannelConfiguration, error) {
	var config domain.ChannelConfiguration
	var credentialID sql.NullString
	var extraJSON []byte

	err := row.Scan(
		&config.ID,
		&config.CustomerID,
		&config.ChannelCode,
		&config.DisplayName,
		&config.BaseURL,
		&credentialID,
		&config.MaxChunkSize,
		&config.IncludeAuditEnrollments,
		&config.Active,
		&extraJSON,
		&config.CreatedAt,
		&config.UpdatedAt,
		&config.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	if credentialID.Valid {
		config.CredentialID = credentialID.String
	}
	if len(extraJSON) > 0 {
		if err := json.Unmarshal(extraJSON, &config.Extra); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extra settings: %w", err)
		}
	}

	return &config, nil
}
