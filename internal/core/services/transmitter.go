package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.Transmitter = (*Transmitter)(nil)

const runLockPrefix = "run:"

// Transmitter orchestrates one sync run per channel configuration:
// export the due set, chunk it, send each chunk, and write the audit outcome
// of a chunk before the next chunk goes out. Chunks for one configuration are
// strictly sequential so the audit state is always a prefix of what was sent;
// different configurations run independently.
//
// The transmitter never retries inside a run. A failed unit stays failed and
// becomes due again on the next scheduled run.
type Transmitter struct {
	configStore driven.ConfigStore
	auditStore  driven.AuditStore
	exporter    *Exporter
	channels    driven.ChannelFactory
	tokens      driven.TokenProviderFactory
	lock        driven.RunLock
	logger      *slog.Logger
	lockTTL     time.Duration
}

// TransmitterConfig holds dependencies for Transmitter.
type TransmitterConfig struct {
	ConfigStore driven.ConfigStore
	AuditStore  driven.AuditStore
	Exporter    *Exporter
	Channels    driven.ChannelFactory
	Tokens      driven.TokenProviderFactory
	Lock        driven.RunLock
	Logger      *slog.Logger
	LockTTL     time.Duration
}

// NewTransmitter creates a transmitter.
func NewTransmitter(cfg TransmitterConfig) *Transmitter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 5 * time.Minute
	}
	return &Transmitter{
		configStore: cfg.ConfigStore,
		auditStore:  cfg.AuditStore,
		exporter:    cfg.Exporter,
		channels:    cfg.Channels,
		tokens:      cfg.Tokens,
		lock:        cfg.Lock,
		logger:      logger,
		lockTTL:     lockTTL,
	}
}

// Run executes one sync run for a configuration.
func (t *Transmitter) Run(ctx context.Context, runCtx *domain.RunContext, configurationID string, unitTypes []domain.UnitType) (*domain.RunResult, error) {
	started := time.Now()
	result := &domain.RunResult{
		ConfigurationID: configurationID,
		State:           domain.RunStatePending,
		StartedAt:       started,
	}

	logger := t.logger.With(
		"configuration_id", configurationID,
		"run_id", runCtx.RunID,
	)
	logger.Info("run starting", "acting_user", runCtx.ActingUser, "triggered_by", runCtx.TriggeredBy)

	config, err := t.configStore.Get(ctx, configurationID)
	if err != nil {
		return t.failRun(result, started, logger, fmt.Errorf("get configuration: %w", err))
	}
	if !config.Active {
		return t.failRun(result, started, logger, fmt.Errorf("%w: configuration is inactive", domain.ErrInvalidConfiguration))
	}
	if err := config.Validate(); err != nil {
		return t.failRun(result, started, logger, err)
	}

	// At most one concurrent run per configuration. The lock TTL outlives
	// a healthy run; Extend between chunks keeps long runs alive.
	lockName := runLockPrefix + configurationID
	acquired, err := t.lock.Acquire(ctx, lockName, t.lockTTL)
	if err != nil {
		return t.failRun(result, started, logger, fmt.Errorf("acquire run lock: %w", err))
	}
	if !acquired {
		return t.failRun(result, started, logger, domain.ErrRunInProgress)
	}
	defer func() {
		if err := t.lock.Release(context.WithoutCancel(ctx), lockName); err != nil {
			logger.Warn("failed to release run lock", "error", err)
		}
	}()

	builder, err := t.channels.GetBuilder(config.ChannelCode)
	if err != nil {
		return t.failRun(result, started, logger, err)
	}

	tokens, err := t.tokens.Create(ctx, config)
	if err != nil {
		return t.failRun(result, started, logger, fmt.Errorf("%w: resolve credentials: %v", domain.ErrInvalidConfiguration, err))
	}

	client, err := builder.BuildClient(ctx, config, tokens)
	if err != nil {
		return t.failRun(result, started, logger, fmt.Errorf("build channel client: %w", err))
	}

	if len(unitTypes) == 0 {
		unitTypes = domain.AllUnitTypes()
	}

	// Exporting: compute the due set per unit type. Upstream
	// unavailability aborts the run with nothing attempted.
	result.State = domain.RunStateExporting
	type typedExport struct {
		unitType domain.UnitType
		export   *ExportResult
	}
	var exports []typedExport
	for _, unitType := range unitTypes {
		serializer, err := builder.BuildSerializer(config, unitType)
		if err != nil {
			if errors.Is(err, domain.ErrUnsupportedOperation) {
				logger.Debug("channel does not accept unit type", "unit_type", unitType)
				continue
			}
			return t.failRun(result, started, logger, err)
		}

		// The full window is fetched every run: a since-watermark would
		// hide previously failed units from the rebuild and they would
		// never be retried. Incrementality comes from the due-set diff.
		export, err := t.exporter.Export(ctx, config, unitType, serializer, time.Time{})
		if err != nil {
			return t.failRun(result, started, logger, err)
		}
		exports = append(exports, typedExport{unitType: unitType, export: export})
	}

	// Transmitting: sequential chunks, audit written after every chunk
	// outcome and before the next send.
	result.State = domain.RunStateTransmitting
	for _, te := range exports {
		result.Skipped += te.export.Skipped

		for _, failure := range te.export.Failures {
			result.Attempted++
			result.RecordFailure(failure.ItemKey, failure.UnitType, failure.Detail)
			t.writeAudit(ctx, logger, config.ID, failure.ItemKey, te.unitType, "", domain.AuditStatusFailed, failure.Detail)
		}

		chunks, err := Chunk(te.export.Due, config.MaxChunkSize)
		if err != nil {
			return t.failRun(result, started, logger, err)
		}

		for _, chunk := range chunks {
			// Cooperative cancellation checkpoint: never mid-chunk.
			select {
			case <-ctx.Done():
				return t.cancelRun(result, started, logger)
			default:
			}

			outcome, err := client.Send(ctx, te.unitType, chunk)
			if err != nil || outcome == nil {
				outcome = domain.NewChunkOutcome()
				detail := "chunk transmission failed"
				if err != nil {
					detail = err.Error()
				}
				outcome.FailAll(chunk, detail)
			}

			t.applyOutcome(ctx, logger, config.ID, te.unitType, chunk, outcome, result)

			if err := t.lock.Extend(ctx, lockName, t.lockTTL); err != nil {
				logger.Warn("failed to extend run lock", "error", err)
			}
		}
	}

	result.State = domain.RunStateFinalizing
	result.Duration = time.Since(started).Seconds()
	result.State = domain.RunStateDone

	logger.Info("run completed",
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration_seconds", result.Duration,
	)

	return result, nil
}

// RunAll executes a run for every active configuration of a customer.
// Configurations run concurrently; chunk ordering holds within each one.
func (t *Transmitter) RunAll(ctx context.Context, runCtx *domain.RunContext, customerID string) ([]*domain.RunResult, error) {
	configs, err := t.configStore.ListActive(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list active configurations: %w", err)
	}

	results := make([]*domain.RunResult, len(configs))
	var wg sync.WaitGroup
	for i, config := range configs {
		wg.Add(1)
		go func(i int, configID string) {
			defer wg.Done()
			result, err := t.Run(ctx, runCtx, configID, nil)
			if err != nil && result == nil {
				result = &domain.RunResult{
					ConfigurationID: configID,
					State:           domain.RunStateFailed,
					Error:           err.Error(),
				}
			}
			results[i] = result
		}(i, config.ID)
	}
	wg.Wait()

	return results, nil
}

// applyOutcome writes one chunk's audit records and updates the run counters.
func (t *Transmitter) applyOutcome(ctx context.Context, logger *slog.Logger, configurationID string, unitType domain.UnitType, chunk *domain.TransmissionChunk, outcome *domain.ChunkOutcome, result *domain.RunResult) {
	for _, su := range chunk.Units {
		result.Attempted++
		key := su.Unit.ItemKey

		if outcome.Succeeded[key] {
			result.Succeeded++
			t.writeAudit(ctx, logger, configurationID, key, unitType, su.Unit.ContentHash, domain.AuditStatusSuccess, "")
			continue
		}

		detail, ok := outcome.Failed[key]
		if !ok {
			// The client reported neither success nor failure for this
			// item. Treat as failed rather than dropping it.
			detail = "no outcome reported for item"
		}
		result.RecordFailure(key, unitType, detail)
		t.writeAudit(ctx, logger, configurationID, key, unitType, su.Unit.ContentHash, domain.AuditStatusFailed, detail)
	}
}

// writeAudit upserts one audit record with a compare-and-set retry.
func (t *Transmitter) writeAudit(ctx context.Context, logger *slog.Logger, configurationID, itemKey string, unitType domain.UnitType, contentHash string, status domain.AuditStatus, detail string) {
	key := domain.AuditKey{
		ConfigurationID: configurationID,
		ItemKey:         itemKey,
		UnitType:        unitType,
	}

	for attempt := 0; attempt < 2; attempt++ {
		record, err := t.auditStore.Get(ctx, key)
		if errors.Is(err, domain.ErrNotFound) {
			record = &domain.AuditRecord{
				ConfigurationID: configurationID,
				ItemKey:         itemKey,
				UnitType:        unitType,
				CreatedAt:       time.Now(),
			}
		} else if err != nil {
			logger.Error("failed to load audit record", "item_key", itemKey, "error", err)
			return
		}

		now := time.Now()
		record.LastStatus = status
		record.ErrorDetail = detail
		record.UpdatedAt = now
		if status == domain.AuditStatusSuccess {
			record.LastContentHash = contentHash
			record.LastTransmittedAt = &now
			record.ErrorDetail = ""
		}

		err = t.auditStore.Upsert(ctx, record)
		if err == nil {
			return
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			logger.Error("failed to write audit record", "item_key", itemKey, "error", err)
			return
		}
		// Version conflict: another writer got there first. Reload once.
	}

	logger.Error("audit write lost compare-and-set race twice", "item_key", itemKey)
}

// failRun marks the run failed and returns the terminal result.
func (t *Transmitter) failRun(result *domain.RunResult, started time.Time, logger *slog.Logger, err error) (*domain.RunResult, error) {
	result.State = domain.RunStateFailed
	result.Error = err.Error()
	result.Duration = time.Since(started).Seconds()

	logger.Error("run failed",
		"state", result.State,
		"attempted", result.Attempted,
		"error", err,
	)

	return result, err
}

// cancelRun surfaces a cooperative cancellation between chunks. Audit state
// already reflects exactly the chunks that were acknowledged.
func (t *Transmitter) cancelRun(result *domain.RunResult, started time.Time, logger *slog.Logger) (*domain.RunResult, error) {
	result.State = domain.RunStateCancelled
	result.Error = domain.ErrRunCancelled.Error()
	result.Duration = time.Since(started).Seconds()

	logger.Warn("run cancelled between chunks",
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)

	return result, domain.ErrRunCancelled
}
