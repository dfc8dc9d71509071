package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// UnitType classifies an exportable unit
type UnitType string

const (
	// UnitTypeContentMetadata is one course/content catalog item
	UnitTypeContentMetadata UnitType = "content_metadata"
	// UnitTypeLearnerData is one learner completion/progress event
	UnitTypeLearnerData UnitType = "learner_data"
)

// AllUnitTypes lists every exportable unit type.
func AllUnitTypes() []UnitType {
	return []UnitType{UnitTypeContentMetadata, UnitTypeLearnerData}
}

// ExportableUnit is the channel-agnostic representation of one exportable
// item: one course or one completion event. Units are built fresh per run and
// never persisted; only their transmission outcome is.
type ExportableUnit struct {
	// ItemKey is stable and unique within a channel configuration
	ItemKey string `json:"item_key"`

	UnitType UnitType `json:"unit_type"`

	// ContentHash is a digest over the fields that matter for change
	// detection. Two builds of identical underlying data produce
	// identical hashes.
	ContentHash string `json:"content_hash"`

	// Fields is the normalized field set the channel serializers map
	// from. Keys are stable across builds.
	Fields map[string]any `json:"fields"`
}

// HashFields computes the deterministic content hash for a normalized field
// set. Keys are sorted before hashing so map iteration order cannot leak into
// the digest.
func HashFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		v, _ := json.Marshal(fields[k])
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write(v)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SerializedUnit pairs an exportable unit with its channel wire payload.
type SerializedUnit struct {
	Unit    ExportableUnit `json:"unit"`
	Payload []byte         `json:"payload"`
}

// TransmissionChunk is a bounded batch of serialized units sent in one
// outbound request. Chunks exist only within one transmitter run.
type TransmissionChunk struct {
	Index int              `json:"index"`
	Units []SerializedUnit `json:"units"`
}

// ItemKeys returns the item keys of all units in the chunk, in order.
func (c *TransmissionChunk) ItemKeys() []string {
	keys := make([]string, len(c.Units))
	for i, u := range c.Units {
		keys[i] = u.Unit.ItemKey
	}
	return keys
}

// ChunkOutcome is the uniform result shape every channel client maps its
// response into. A whole-chunk network failure marks every item failed with
// the same detail; items are never silently dropped.
type ChunkOutcome struct {
	Succeeded map[string]bool   `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

// NewChunkOutcome creates an empty outcome.
func NewChunkOutcome() *ChunkOutcome {
	return &ChunkOutcome{
		Succeeded: make(map[string]bool),
		Failed:    make(map[string]string),
	}
}

// FailAll marks every item in the chunk failed with the same detail.
func (o *ChunkOutcome) FailAll(chunk *TransmissionChunk, detail string) {
	for _, key := range chunk.ItemKeys() {
		delete(o.Succeeded, key)
		o.Failed[key] = detail
	}
}

// SucceedAll marks every item in the chunk succeeded.
func (o *ChunkOutcome) SucceedAll(chunk *TransmissionChunk) {
	for _, key := range chunk.ItemKeys() {
		o.Succeeded[key] = true
	}
}

// ContentRecord is one raw catalog item from the platform data source.
type ContentRecord struct {
	CourseID      string     `json:"course_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"image_url,omitempty"`
	EnrollmentURL string     `json:"enrollment_url,omitempty"`
	Duration      string     `json:"duration,omitempty"`
	IsAuditOnly   bool       `json:"is_audit_only"`
	StartAt       *time.Time `json:"start_at,omitempty"`
	EndAt         *time.Time `json:"end_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ProgressRecord is one raw learner progress/completion event from the
// platform data source.
type ProgressRecord struct {
	LearnerID       string     `json:"learner_id"`
	LearnerEmail    string     `json:"learner_email"`
	CourseID        string     `json:"course_id"`
	IsComplete      bool       `json:"is_complete"`
	Grade           float64    `json:"grade"`
	IsAuditTrack    bool       `json:"is_audit_track"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	TotalTimeSpent  int        `json:"total_time_spent_seconds"`
	LastActivityAt  time.Time  `json:"last_activity_at"`
}
