package domain

import "time"

// AuditStatus is the outcome of the last transmission attempt for a unit
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
	AuditStatusPending AuditStatus = "pending"
)

// AuditRecord is the durable proof of the last transmission outcome for one
// unit. At most one record exists per (configuration_id, item_key, unit_type).
// Records are mutated only by the transmitter after a chunk outcome is known,
// never speculatively before the network call resolves.
type AuditRecord struct {
	ConfigurationID   string      `json:"configuration_id"`
	ItemKey           string      `json:"item_key"`
	UnitType          UnitType    `json:"unit_type"`
	LastContentHash   string      `json:"last_content_hash"`
	LastStatus        AuditStatus `json:"last_status"`
	LastTransmittedAt *time.Time  `json:"last_transmitted_at,omitempty"`
	ErrorDetail       string      `json:"error_detail,omitempty"`

	// Version supports optimistic compare-and-set upserts so concurrent
	// (mis)scheduled runs cannot lose updates
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditKey identifies one audit record.
type AuditKey struct {
	ConfigurationID string
	ItemKey         string
	UnitType        UnitType
}

// Key returns the record's composite key.
func (r *AuditRecord) Key() AuditKey {
	return AuditKey{
		ConfigurationID: r.ConfigurationID,
		ItemKey:         r.ItemKey,
		UnitType:        r.UnitType,
	}
}

// IsDue reports whether a unit with the given hash must be transmitted again:
// the stored hash differs, or the last attempt failed. A missing record is
// always due; callers handle that case before consulting IsDue.
func (r *AuditRecord) IsDue(contentHash string) bool {
	if r.LastStatus != AuditStatusSuccess {
		return true
	}
	return r.LastContentHash != contentHash
}
