package driven

import (
	"context"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// AuditStore handles transmission audit persistence (PostgreSQL).
// Upserts are atomic per (configuration_id, item_key, unit_type) so that two
// concurrently (mis)scheduled runs for one configuration cannot lose updates.
type AuditStore interface {
	// Get retrieves the audit record for a unit.
	// Returns domain.ErrNotFound if no record exists.
	Get(ctx context.Context, key domain.AuditKey) (*domain.AuditRecord, error)

	// GetMany retrieves audit records for a configuration and unit type,
	// keyed by item key. Missing units are simply absent from the map.
	GetMany(ctx context.Context, configurationID string, unitType domain.UnitType) (map[string]*domain.AuditRecord, error)

	// Upsert creates or updates a record using optimistic concurrency.
	// The write succeeds only if the stored version matches
	// record.Version; on success the stored version is incremented.
	// A mismatch returns domain.ErrAlreadyExists.
	Upsert(ctx context.Context, record *domain.AuditRecord) error

	// ListByConfiguration retrieves every audit record for a configuration.
	ListByConfiguration(ctx context.Context, configurationID string) ([]*domain.AuditRecord, error)

	// DeleteByConfiguration removes all audit records for a configuration.
	// Used only by operational cleanup, never by the transmitter.
	DeleteByConfiguration(ctx context.Context, configurationID string) error
}
