package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AuditStore = (*AuditStore)(nil)

// AuditStore implements driven.AuditStore using PostgreSQL.
// Upserts carry an optimistic version check so two concurrent runs for the
// same configuration cannot overwrite each other's outcome.
type AuditStore struct {
	db *DB
}

// NewAuditStore creates a new AuditStore
func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

const auditColumns = `configuration_id, item_key, unit_type, last_content_hash, last_status, last_transmitted_at, error_detail, version, created_at, updated_at`

// Get retrieves the audit record for a unit
func (s *AuditStore) Get(ctx context.Context, key domain.AuditKey) (*domain.AuditRecord, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_records
		WHERE configuration_id = $1 AND item_key = $2 AND unit_type = $3
	`

	record, err := scanAuditRecord(s.db.QueryRowContext(ctx, query, key.ConfigurationID, key.ItemKey, string(key.UnitType)))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetMany retrieves audit records for a configuration and unit type,
// keyed by item key
func (s *AuditStore) GetMany(ctx context.Context, configurationID string, unitType domain.UnitType) (map[string]*domain.AuditRecord, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_records
		WHERE configuration_id = $1 AND unit_type = $2
	`

	rows, err := s.db.QueryContext(ctx, query, configurationID, string(unitType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make(map[string]*domain.AuditRecord)
	for rows.Next() {
		record, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records[record.ItemKey] = record
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Upsert creates or updates a record with a compare-and-set on version.
// A version mismatch returns domain.ErrAlreadyExists so the caller can
// reload and retry.
func (s *AuditStore) Upsert(ctx context.Context, record *domain.AuditRecord) error {
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	query := `
		INSERT INTO audit_records (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8 + 1, $9, $10)
		ON CONFLICT (configuration_id, item_key, unit_type) DO UPDATE SET
			last_content_hash = EXCLUDED.last_content_hash,
			last_status = EXCLUDED.last_status,
			last_transmitted_at = EXCLUDED.last_transmitted_at,
			error_detail = EXCLUDED.error_detail,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		WHERE audit_records.version = $8
	`

	result, err := s.db.ExecContext(ctx, query,
		record.ConfigurationID,
		record.ItemKey,
		string(record.UnitType),
		record.LastContentHash,
		string(record.LastStatus),
		NullTime(record.LastTransmittedAt),
		record.ErrorDetail,
		record.Version,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Another writer advanced the version first.
		return domain.ErrAlreadyExists
	}

	record.Version++
	return nil
}

// ListByConfiguration retrieves every audit record for a configuration
func (s *AuditStore) ListByConfiguration(ctx context.Context, configurationID string) ([]*domain.AuditRecord, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_records
		WHERE configuration_id = $1
		ORDER BY unit_type, item_key
	`

	rows, err := s.db.QueryContext(ctx, query, configurationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		record, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// DeleteByConfiguration removes all audit records for a configuration
func (s *AuditStore) DeleteByConfiguration(ctx context.Context, configurationID string) error {
	query := `DELETE FROM audit_records WHERE configuration_id = $1`
	_, err := s.db.ExecContext(ctx, query, configurationID)
	return err
}

// scanner abstracts sql.Row and sql.Rows for shared scanning
type scanner interface {
	Scan(dest ...any) error
}

func scanAuditRecord(row scanner) (*domain.AuditRecord, error) {
	var record domain.AuditRecord
	var transmittedAt sql.NullTime

	err := row.Scan(
		&record.ConfigurationID,
		&record.ItemKey,
		&record.UnitType,
		&record.LastContentHash,
		&record.LastStatus,
		&transmittedAt,
		&record.ErrorDetail,
		&record.Version,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.LastTransmittedAt = TimePtr(transmittedAt)
	return &record, nil
}
