package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.HealthChecker = (*HealthService)(nil)

// HealthService probes channel configurations without touching the audit
// store or exporting anything. Expected failure modes come back as a status;
// only an unknown channel code is an error.
type HealthService struct {
	configStore driven.ConfigStore
	credentials driven.CredentialsStore
	channels    driven.ChannelFactory
	tokens      driven.TokenProviderFactory
	logger      *slog.Logger
}

// NewHealthService creates a health service.
func NewHealthService(configStore driven.ConfigStore, credentials driven.CredentialsStore, channels driven.ChannelFactory, tokens driven.TokenProviderFactory, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		configStore: configStore,
		credentials: credentials,
		channels:    channels,
		tokens:      tokens,
		logger:      logger,
	}
}

// Check probes one configuration's channel with the cheapest
// credential-validating call it offers.
func (s *HealthService) Check(ctx context.Context, configurationID string) (*domain.HealthCheckResult, error) {
	config, err := s.configStore.Get(ctx, configurationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return domain.HealthResult(domain.HealthStatusUnreachable, "configuration store unavailable"), nil
	}

	builder, err := s.channels.GetBuilder(config.ChannelCode)
	if err != nil {
		// Unknown channel code is a programmer/integration error, the one
		// case that surfaces as an error rather than a status.
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return domain.HealthResult(domain.HealthStatusInvalidConfig, err.Error()), nil
	}

	var creds *domain.Credentials
	if config.CredentialID != "" {
		creds, err = s.credentials.Get(ctx, config.CredentialID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return domain.HealthResult(domain.HealthStatusUnreachable, "credential store unavailable"), nil
		}
	}
	if !creds.Complete() {
		return domain.HealthResult(domain.HealthStatusInvalidConfig, "missing or incomplete credentials"), nil
	}

	if err := builder.ValidateConfig(config, creds); err != nil {
		return domain.HealthResult(domain.HealthStatusInvalidConfig, err.Error()), nil
	}

	tokens, err := s.tokens.Create(ctx, config)
	if err != nil {
		return domain.HealthResult(domain.HealthStatusInvalidConfig, err.Error()), nil
	}

	client, err := builder.BuildClient(ctx, config, tokens)
	if err != nil {
		return domain.HealthResult(domain.HealthStatusInvalidConfig, err.Error()), nil
	}

	if err := client.Heartbeat(ctx); err != nil {
		s.logger.Info("channel heartbeat failed",
			"configuration_id", configurationID,
			"channel_code", config.ChannelCode,
			"error", err,
		)
		if errors.Is(err, domain.ErrAuthFailure) {
			return domain.HealthResult(domain.HealthStatusAuthFailed, err.Error()), nil
		}
		return domain.HealthResult(domain.HealthStatusUnreachable, err.Error()), nil
	}

	return domain.HealthResult(domain.HealthStatusOK, ""), nil
}
