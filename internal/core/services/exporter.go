package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Exporter computes the due set for a configuration and serializes due units
// into channel wire payloads. The due-set logic is shared across channels and
// never overridden; channels vary only in the serializer they plug in.
type Exporter struct {
	builder    *PayloadBuilder
	auditStore driven.AuditStore
	logger     *slog.Logger
}

// NewExporter creates an exporter.
func NewExporter(builder *PayloadBuilder, auditStore driven.AuditStore, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		builder:    builder,
		auditStore: auditStore,
		logger:     logger,
	}
}

// ExportResult carries the serialized due units and the units that failed
// serialization. Serialization failures never abort the export of the
// remaining units.
type ExportResult struct {
	Due      []domain.SerializedUnit
	Skipped  int
	Failures []domain.UnitFailure
}

// Export builds units of one type, filters them against the audit history and
// serializes the due ones. A unit is due if it has no audit record, its hash
// differs from the last successfully transmitted hash, or its last attempt
// failed. Units whose hash matches a prior success are skipped, which makes
// repeated runs over unchanged data transmit nothing.
func (e *Exporter) Export(ctx context.Context, config *domain.ChannelConfiguration, unitType domain.UnitType, serializer driven.PayloadSerializer, since time.Time) (*ExportResult, error) {
	units, err := e.builder.Build(ctx, config, unitType, since)
	if err != nil {
		return nil, err
	}

	history, err := e.auditStore.GetMany(ctx, config.ID, unitType)
	if err != nil {
		return nil, fmt.Errorf("load audit history: %w", err)
	}

	result := &ExportResult{}
	for _, unit := range units {
		record, seen := history[unit.ItemKey]
		if seen && !record.IsDue(unit.ContentHash) {
			result.Skipped++
			continue
		}

		payload, err := serializer.Serialize(unit)
		if err != nil {
			serr := &domain.SerializationError{ItemKey: unit.ItemKey, Reason: err.Error()}
			e.logger.Warn("unit failed serialization",
				"configuration_id", config.ID,
				"item_key", unit.ItemKey,
				"unit_type", unitType,
				"error", err,
			)
			result.Failures = append(result.Failures, domain.UnitFailure{
				ItemKey:  unit.ItemKey,
				UnitType: unitType,
				Detail:   serr.Error(),
			})
			continue
		}

		result.Due = append(result.Due, domain.SerializedUnit{
			Unit:    unit,
			Payload: payload,
		})
	}

	e.logger.Info("export computed",
		"configuration_id", config.ID,
		"unit_type", unitType,
		"due", len(result.Due),
		"skipped", result.Skipped,
		"serialization_failures", len(result.Failures),
	)

	return result, nil
}

// BaseSerializer is the unimplemented serialization contract. It exists to
// define the shape channel serializers fill in; invoking it directly is a
// programmer error.
type BaseSerializer struct{}

// Verify interface compliance
var _ driven.PayloadSerializer = (*BaseSerializer)(nil)

// Serialize always fails with domain.ErrUnsupportedOperation.
func (BaseSerializer) Serialize(unit domain.ExportableUnit) ([]byte, error) {
	return nil, domain.ErrUnsupportedOperation
}
