package driving

import (
	"context"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// ConfigService exposes channel configuration reads and sync triggering to
// the API surface.
type ConfigService interface {
	// GetConfiguration retrieves one configuration
	GetConfiguration(ctx context.Context, id string) (*domain.ChannelConfiguration, error)

	// ListConfigurations lists a customer's configurations with their
	// channel codes
	ListConfigurations(ctx context.Context, customerID string) ([]*domain.ConfigurationSummary, error)

	// TriggerSync enqueues a transmitter run for a configuration.
	// Delivery is at-least-once; duplicate triggers are safe.
	TriggerSync(ctx context.Context, auth *domain.AuthContext, configurationID string, unitTypes []domain.UnitType) (*domain.Task, error)

	// GetRunStatus retrieves a previously enqueued task for polling
	GetRunStatus(ctx context.Context, taskID string) (*domain.Task, error)
}
