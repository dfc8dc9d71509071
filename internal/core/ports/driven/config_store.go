package driven

import (
	"context"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// ConfigStore handles channel configuration persistence (PostgreSQL).
// The sync pipeline reads configurations; writes come only from the
// configuration API.
type ConfigStore interface {
	// Get retrieves a configuration by ID
	Get(ctx context.Context, id string) (*domain.ChannelConfiguration, error)

	// ListActive retrieves all active configurations for a customer
	ListActive(ctx context.Context, customerID string) ([]*domain.ChannelConfiguration, error)

	// List retrieves all configurations for a customer, active or not
	List(ctx context.Context, customerID string) ([]*domain.ChannelConfiguration, error)

	// Save creates or updates a configuration
	Save(ctx context.Context, config *domain.ChannelConfiguration) error

	// Deactivate marks a configuration inactive. Configurations are never
	// deleted so audit records keep a valid parent.
	Deactivate(ctx context.Context, id string) error
}

// CredentialsStore handles channel credential persistence. Secret fields are
// encrypted at rest.
type CredentialsStore interface {
	// Get retrieves credentials by ID
	Get(ctx context.Context, id string) (*domain.Credentials, error)

	// Save creates or updates credentials
	Save(ctx context.Context, creds *domain.Credentials) error

	// Delete removes credentials
	Delete(ctx context.Context, id string) error
}
