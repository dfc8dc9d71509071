// Package canvas implements the Canvas LMS channel adapter. It is the
// reference adapter for channels with per-item response granularity.
package canvas

import (
	"context"
	"fmt"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChannelBuilder = (*Builder)(nil)

// Builder creates Canvas clients and serializers.
type Builder struct{}

// NewBuilder creates a Canvas channel builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Code returns the channel code this builder serves.
func (b *Builder) Code() domain.ChannelCode {
	return domain.ChannelCodeCanvas
}

// ValidateConfig checks a configuration and its credentials are usable.
// Canvas requires a base URL and OAuth2 credentials with a refresh token.
func (b *Builder) ValidateConfig(config *domain.ChannelConfiguration, creds *domain.Credentials) error {
	if config.BaseURL == "" {
		return fmt.Errorf("%w: canvas requires a base URL", domain.ErrInvalidConfiguration)
	}
	if creds == nil || creds.AuthMethod != domain.AuthMethodOAuth2 {
		return fmt.Errorf("%w: canvas requires oauth2 credentials", domain.ErrInvalidConfiguration)
	}
	if !creds.Complete() {
		return fmt.Errorf("%w: canvas credentials are incomplete", domain.ErrInvalidConfiguration)
	}
	return nil
}

// BuildClient creates a client scoped to one configuration and one run.
func (b *Builder) BuildClient(ctx context.Context, config *domain.ChannelConfiguration, tokens driven.TokenProvider) (driven.ChannelClient, error) {
	return NewClient(config, tokens), nil
}

// BuildSerializer creates the serializer for a unit type.
func (b *Builder) BuildSerializer(config *domain.ChannelConfiguration, unitType domain.UnitType) (driven.PayloadSerializer, error) {
	switch unitType {
	case domain.UnitTypeContentMetadata:
		return courseSerializer{}, nil
	case domain.UnitTypeLearnerData:
		return completionSerializer{}, nil
	default:
		return nil, fmt.Errorf("%w: canvas does not accept unit type %q", domain.ErrUnsupportedOperation, unitType)
	}
}
