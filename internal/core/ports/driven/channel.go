package driven

import (
	"context"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// ChannelClient performs the network calls for one channel configuration.
// Clients own connection setup and auth-token acquisition; tokens are cached
// for the lifetime of one run, not across runs.
type ChannelClient interface {
	// Code returns the channel code this client talks to.
	Code() domain.ChannelCode

	// Send transmits one chunk and maps the response into the uniform
	// outcome shape. A whole-chunk failure (timeout, 5xx, auth failure)
	// returns an outcome with every item failed and the same detail.
	// Channels without per-item response granularity succeed or fail the
	// whole chunk on the response status code.
	Send(ctx context.Context, unitType domain.UnitType, chunk *domain.TransmissionChunk) (*domain.ChunkOutcome, error)

	// Heartbeat performs the cheapest credential-validating probe the
	// channel offers. It returns domain.ErrAuthFailure for rejected
	// credentials and wraps transport errors otherwise.
	Heartbeat(ctx context.Context) error
}

// PayloadSerializer maps a normalized unit onto one channel's wire schema.
// Each channel provides one serializer per unit type it supports.
type PayloadSerializer interface {
	// Serialize renders the unit's wire payload.
	Serialize(unit domain.ExportableUnit) ([]byte, error)
}

// ChannelBuilder creates clients and serializers for one channel code.
type ChannelBuilder interface {
	// Code returns the channel code this builder serves.
	Code() domain.ChannelCode

	// ValidateConfig checks a configuration and its credentials are
	// sufficient for this channel. Returns domain.ErrInvalidConfiguration
	// (possibly wrapped) when they are not.
	ValidateConfig(config *domain.ChannelConfiguration, creds *domain.Credentials) error

	// BuildClient creates a client scoped to one configuration and one
	// run. The token provider resolves and refreshes credentials.
	BuildClient(ctx context.Context, config *domain.ChannelConfiguration, tokens TokenProvider) (ChannelClient, error)

	// BuildSerializer creates the serializer for a unit type.
	// Returns domain.ErrUnsupportedOperation for unit types the channel
	// does not accept.
	BuildSerializer(config *domain.ChannelConfiguration, unitType domain.UnitType) (PayloadSerializer, error)
}

// ChannelFactory manages channel builders, selected by the channel code on
// the configuration.
type ChannelFactory interface {
	// Register registers a builder for a channel code.
	Register(builder ChannelBuilder)

	// GetBuilder returns the builder for a channel code.
	// Returns domain.ErrChannelNotFound for unregistered codes.
	GetBuilder(code domain.ChannelCode) (ChannelBuilder, error)

	// SupportedChannels returns all registered channel codes.
	SupportedChannels() []domain.ChannelCode
}
