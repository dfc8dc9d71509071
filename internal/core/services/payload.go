package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// PayloadBuilder turns raw catalog and learner-progress records into
// channel-agnostic exportable units with deterministic content hashes.
// Builds are side-effect free; callers may rebuild at will.
type PayloadBuilder struct {
	dataSource driven.DataSource
	logger     *slog.Logger
}

// NewPayloadBuilder creates a payload builder.
func NewPayloadBuilder(dataSource driven.DataSource, logger *slog.Logger) *PayloadBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayloadBuilder{
		dataSource: dataSource,
		logger:     logger,
	}
}

// Build produces the exportable units of one type for a configuration.
// Units are ordered deterministically (upstream order is preserved).
// Upstream unreachability surfaces as domain.ErrDataUnavailable; an empty
// result is valid.
func (b *PayloadBuilder) Build(ctx context.Context, config *domain.ChannelConfiguration, unitType domain.UnitType, since time.Time) ([]domain.ExportableUnit, error) {
	switch unitType {
	case domain.UnitTypeContentMetadata:
		return b.buildContent(ctx, config)
	case domain.UnitTypeLearnerData:
		return b.buildLearnerData(ctx, config, since)
	default:
		return nil, fmt.Errorf("%w: unit type %q", domain.ErrInvalidInput, unitType)
	}
}

func (b *PayloadBuilder) buildContent(ctx context.Context, config *domain.ChannelConfiguration) ([]domain.ExportableUnit, error) {
	records, err := b.dataSource.FetchContentCatalog(ctx, config.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch content catalog: %v", domain.ErrDataUnavailable, err)
	}

	units := make([]domain.ExportableUnit, 0, len(records))
	for _, rec := range records {
		if rec.IsAuditOnly && !config.IncludeAuditEnrollments {
			continue
		}

		fields := map[string]any{
			"course_id":      rec.CourseID,
			"title":          rec.Title,
			"description":    rec.Description,
			"image_url":      rec.ImageURL,
			"enrollment_url": rec.EnrollmentURL,
			"duration":       rec.Duration,
		}
		if rec.StartAt != nil {
			fields["start_at"] = rec.StartAt.UTC().Format(time.RFC3339)
		}
		if rec.EndAt != nil {
			fields["end_at"] = rec.EndAt.UTC().Format(time.RFC3339)
		}

		units = append(units, domain.ExportableUnit{
			ItemKey:     rec.CourseID,
			UnitType:    domain.UnitTypeContentMetadata,
			ContentHash: domain.HashFields(fields),
			Fields:      fields,
		})
	}

	b.logger.Debug("built content units",
		"configuration_id", config.ID,
		"fetched", len(records),
		"exportable", len(units),
	)

	return units, nil
}

func (b *PayloadBuilder) buildLearnerData(ctx context.Context, config *domain.ChannelConfiguration, since time.Time) ([]domain.ExportableUnit, error) {
	records, err := b.dataSource.FetchLearnerProgress(ctx, config.CustomerID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch learner progress: %v", domain.ErrDataUnavailable, err)
	}

	units := make([]domain.ExportableUnit, 0, len(records))
	for _, rec := range records {
		if rec.IsAuditTrack && !config.IncludeAuditEnrollments {
			continue
		}

		fields := map[string]any{
			"learner_id":    rec.LearnerID,
			"learner_email": rec.LearnerEmail,
			"course_id":     rec.CourseID,
			"is_complete":   rec.IsComplete,
			"grade":         rec.Grade,
			"time_spent":    rec.TotalTimeSpent,
		}
		if rec.CompletedAt != nil {
			fields["completed_at"] = rec.CompletedAt.UTC().Format(time.RFC3339)
		}

		units = append(units, domain.ExportableUnit{
			ItemKey:     rec.LearnerID + ":" + rec.CourseID,
			UnitType:    domain.UnitTypeLearnerData,
			ContentHash: domain.HashFields(fields),
			Fields:      fields,
		})
	}

	b.logger.Debug("built learner units",
		"configuration_id", config.ID,
		"fetched", len(records),
		"exportable", len(units),
	)

	return units, nil
}
