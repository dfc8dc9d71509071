// Package xapi implements the generic xAPI channel adapter. It targets any
// Learning Record Store and accepts learner data only; content metadata has
// no statement representation and is skipped for this channel.
package xapi

import (
	"context"
	"fmt"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChannelBuilder = (*Builder)(nil)

// Builder creates LRS clients and statement serializers.
type Builder struct {
	// platformURL is the public base URL of the learning platform, used
	// to form activity IRIs.
	platformURL string
}

// NewBuilder creates an xAPI channel builder.
func NewBuilder(platformURL string) *Builder {
	return &Builder{platformURL: platformURL}
}

// Code returns the channel code this builder serves.
func (b *Builder) Code() domain.ChannelCode {
	return domain.ChannelCodeGeneric
}

// ValidateConfig checks a configuration and its credentials are usable.
// An LRS endpoint needs basic-auth credentials.
func (b *Builder) ValidateConfig(config *domain.ChannelConfiguration, creds *domain.Credentials) error {
	if config.BaseURL == "" {
		return fmt.Errorf("%w: xAPI requires an LRS endpoint URL", domain.ErrInvalidConfiguration)
	}
	if creds == nil || creds.AuthMethod != domain.AuthMethodBasic {
		return fmt.Errorf("%w: xAPI requires basic-auth LRS credentials", domain.ErrInvalidConfiguration)
	}
	if !creds.Complete() {
		return fmt.Errorf("%w: xAPI credentials are incomplete", domain.ErrInvalidConfiguration)
	}
	return nil
}

// BuildClient creates a client scoped to one configuration and one run.
func (b *Builder) BuildClient(ctx context.Context, config *domain.ChannelConfiguration, tokens driven.TokenProvider) (driven.ChannelClient, error) {
	return NewClient(config, tokens), nil
}

// BuildSerializer creates the serializer for a unit type.
func (b *Builder) BuildSerializer(config *domain.ChannelConfiguration, unitType domain.UnitType) (driven.PayloadSerializer, error) {
	if unitType != domain.UnitTypeLearnerData {
		return nil, fmt.Errorf("%w: xAPI does not accept unit type %q", domain.ErrUnsupportedOperation, unitType)
	}
	return statementSerializer{platformURL: b.platformURL}, nil
}
