package domain

import "time"

// ChannelCode identifies an external LMS integration target
type ChannelCode string

const (
	ChannelCodeBlackboard  ChannelCode = "BLACKBOARD"
	ChannelCodeCanvas      ChannelCode = "CANVAS"
	ChannelCodeCornerstone ChannelCode = "CSOD"
	ChannelCodeDegreed2    ChannelCode = "DEGREED2"
	ChannelCodeMoodle      ChannelCode = "MOODLE"
	ChannelCodeSAP         ChannelCode = "SAP"
	ChannelCodeGeneric     ChannelCode = "GENERIC"
)

// AllChannelCodes lists every supported channel code.
func AllChannelCodes() []ChannelCode {
	return []ChannelCode{
		ChannelCodeBlackboard,
		ChannelCodeCanvas,
		ChannelCodeCornerstone,
		ChannelCodeDegreed2,
		ChannelCodeMoodle,
		ChannelCodeSAP,
		ChannelCodeGeneric,
	}
}

// ChannelConfiguration is one enterprise customer's connection to one channel.
// It is created and edited through the configuration API and read-only to the
// sync pipeline. Configurations are deactivated rather than deleted so audit
// records keep a valid parent.
type ChannelConfiguration struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customer_id"`
	ChannelCode ChannelCode `json:"channel_code"`
	DisplayName string      `json:"display_name"`

	// Endpoint settings
	BaseURL string `json:"base_url"`

	// CredentialID references the stored channel credentials
	CredentialID string `json:"credential_id,omitempty"`

	// MaxChunkSize is the hard cap on units per outbound request.
	// Channels that require strict per-item calls set this to 1.
	MaxChunkSize int `json:"max_chunk_size"`

	// IncludeAuditEnrollments controls whether audit-track learner data
	// is exported to this channel
	IncludeAuditEnrollments bool `json:"include_audit_enrollments"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by"`

	// Extra holds channel-specific settings (account IDs, completion
	// endpoints) that the channel adapter interprets
	Extra map[string]string `json:"extra,omitempty"`
}

// Validate checks the configuration is usable for a sync run.
func (c *ChannelConfiguration) Validate() error {
	if c.ID == "" || c.CustomerID == "" {
		return ErrInvalidConfiguration
	}
	if !c.ChannelCode.Valid() {
		return ErrInvalidConfiguration
	}
	if c.MaxChunkSize <= 0 {
		return ErrInvalidConfiguration
	}
	return nil
}

// Valid reports whether the channel code is a known channel.
func (cc ChannelCode) Valid() bool {
	switch cc {
	case ChannelCodeBlackboard, ChannelCodeCanvas, ChannelCodeCornerstone,
		ChannelCodeDegreed2, ChannelCodeMoodle, ChannelCodeSAP, ChannelCodeGeneric:
		return true
	}
	return false
}

// ConfigurationSummary is the listing view returned by the configuration API.
type ConfigurationSummary struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customer_id"`
	ChannelCode ChannelCode `json:"channel_code"`
	DisplayName string      `json:"display_name"`
	Active      bool        `json:"active"`
	LastRunAt   *time.Time  `json:"last_run_at,omitempty"`
}
