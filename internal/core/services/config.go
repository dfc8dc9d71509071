package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.ConfigService = (*ConfigService)(nil)

// ConfigService exposes configuration reads and sync triggering to the API
// surface. Configuration writes belong to the platform's configuration
// management system; this service only reads.
type ConfigService struct {
	configStore driven.ConfigStore
	taskQueue   driven.TaskQueue
	logger      *slog.Logger
}

// NewConfigService creates a config service.
func NewConfigService(configStore driven.ConfigStore, taskQueue driven.TaskQueue, logger *slog.Logger) *ConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigService{
		configStore: configStore,
		taskQueue:   taskQueue,
		logger:      logger,
	}
}

// GetConfiguration retrieves one configuration.
func (s *ConfigService) GetConfiguration(ctx context.Context, id string) (*domain.ChannelConfiguration, error) {
	return s.configStore.Get(ctx, id)
}

// ListConfigurations lists a customer's configurations with their channel
// codes.
func (s *ConfigService) ListConfigurations(ctx context.Context, customerID string) ([]*domain.ConfigurationSummary, error) {
	configs, err := s.configStore.List(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}

	summaries := make([]*domain.ConfigurationSummary, 0, len(configs))
	for _, config := range configs {
		summaries = append(summaries, &domain.ConfigurationSummary{
			ID:          config.ID,
			CustomerID:  config.CustomerID,
			ChannelCode: config.ChannelCode,
			DisplayName: config.DisplayName,
			Active:      config.Active,
		})
	}
	return summaries, nil
}

// TriggerSync enqueues a transmitter run for a configuration. The queue
// delivers at least once; the idempotent due set makes duplicates harmless.
func (s *ConfigService) TriggerSync(ctx context.Context, auth *domain.AuthContext, configurationID string, unitTypes []domain.UnitType) (*domain.Task, error) {
	config, err := s.configStore.Get(ctx, configurationID)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessCustomer(config.CustomerID) {
		return nil, domain.ErrForbidden
	}
	if !config.Active {
		return nil, fmt.Errorf("%w: configuration is inactive", domain.ErrInvalidConfiguration)
	}

	task := domain.NewTransmitChannelTask(config.CustomerID, configurationID, auth.UserID, unitTypes)
	if err := s.taskQueue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue transmit task: %w", err)
	}

	s.logger.Info("sync triggered",
		"configuration_id", configurationID,
		"task_id", task.ID,
		"acting_user", auth.UserID,
	)

	return task, nil
}

// GetRunStatus retrieves a previously enqueued task for polling.
func (s *ConfigService) GetRunStatus(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.taskQueue.GetTask(ctx, taskID)
}
