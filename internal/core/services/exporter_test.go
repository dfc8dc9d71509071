package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven/mocks"
)

func newTestExporter(content []*domain.ContentRecord) (*mocks.MockAuditStore, *Exporter) {
	source := mocks.NewMockDataSource()
	source.Content = content
	auditStore := mocks.NewMockAuditStore()
	exporter := NewExporter(NewPayloadBuilder(source, nil), auditStore, nil)
	return auditStore, exporter
}

func TestExporter_AllDueWithoutHistory(t *testing.T) {
	_, exporter := newTestExporter([]*domain.ContentRecord{
		{CourseID: "course-1", Title: "One"},
		{CourseID: "course-2", Title: "Two"},
	})

	result, err := exporter.Export(context.Background(), testConfig(), domain.UnitTypeContentMetadata, &mocks.MockSerializer{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Due) != 2 {
		t.Errorf("expected 2 due units, got %d", len(result.Due))
	}
	if result.Skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", result.Skipped)
	}
}

func TestExporter_SkipsUnchangedSuccesses(t *testing.T) {
	content := []*domain.ContentRecord{
		{CourseID: "course-1", Title: "One"},
		{CourseID: "course-2", Title: "Two"},
	}
	auditStore, exporter := newTestExporter(content)

	// First export to learn the hashes, then record course-1 as
	// successfully transmitted with its current hash.
	first, err := exporter.Export(context.Background(), testConfig(), domain.UnitTypeContentMetadata, &mocks.MockSerializer{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var course1Hash string
	for _, su := range first.Due {
		if su.Unit.ItemKey == "course-1" {
			course1Hash = su.Unit.ContentHash
		}
	}
	auditStore.SeedRecord(&domain.AuditRecord{
		ConfigurationID: "cfg-1",
		ItemKey:         "course-1",
		UnitType:        domain.UnitTypeContentMetadata,
		LastContentHash: course1Hash,
		LastStatus:      domain.AuditStatusSuccess,
		Version:         1,
	})

	result, err := exporter.Export(context.Background(), testConfig(), domain.UnitTypeContentMetadata, &mocks.MockSerializer{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Due) != 1 {
		t.Fatalf("expected 1 due unit, got %d", len(result.Due))
	}
	if result.Due[0].Unit.ItemKey != "course-2" {
		t.Errorf("expected course-2 due, got %s", result.Due[0].Unit.ItemKey)
	}
	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", result.Skipped)
	}
}

func TestExporter_FailedUnitsStayDue(t *testing.T) {
	auditStore, exporter := newTestExporter([]*domain.ContentRecord{
		{CourseID: "course-1", Title: "One"},
	})

	// A failed record is due again even if the hash has not changed.
	auditStore.SeedRecord(&domain.AuditRecord{
		ConfigurationID: "cfg-1",
		ItemKey:         "course-1",
		UnitType:        domain.UnitTypeContentMetadata,
		LastContentHash: "whatever",
		LastStatus:      domain.AuditStatusFailed,
		Version:         1,
	})

	result, err := exporter.Export(context.Background(), testConfig(), domain.UnitTypeContentMetadata, &mocks.MockSerializer{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Due) != 1 {
		t.Errorf("expected failed unit to be due, got %d due", len(result.Due))
	}
}

func TestExporter_ChangedHashIsDue(t *testing.T) {
	auditStore, exporter := newTestExporter([]*domain.ContentRecord{
		{CourseID: "course-1", Title: "Renamed"},
	})

	auditStore.SeedRecord(&domain.AuditRecord{
		ConfigurationID: "cfg-1",
		ItemKey:         "course-1",
		UnitType:        domain.UnitTypeContentMetadata,
		LastContentHash: "hash-of-old-title",
		LastStatus:      domain.AuditStatusSuccess,
		Version:         1,
	})

	result, err := exporter.Export(context.Background(), testConfig(), domain.UnitTypeContentMetadata, &mocks.MockSerializer{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Due) != 1 {
		t.Errorf("expected changed unit to be due, got %d due", len(result.Due))
	}
}

func TestExporter_SerializationFailureIsolated(t *testing.T) {
	_, exporter := newTestExporter([]*domain.ContentRecord{
		{CourseID: "course-1", Title: "One"},
		{CourseID: "course-2", Title: "Two"},
		{CourseID: "course-3", Title: "Three"},
	})

	serializer := &mocks.MockSerializer{
		SerializeFn: func(unit domain.ExportableUnit) ([]byte, error) {
			if unit.ItemKey == "course-2" {
				return nil, errors.New("missing required field")
			}
			return []byte("{}"), nil
		},
	}

	result, err := exporter.Export(context.Background(), testConfig(), domain.UnitTypeContentMetadata, serializer, time.Time{})
	if err != nil {
		t.Fatalf("one bad unit must not abort the export: %v", err)
	}
	if len(result.Due) != 2 {
		t.Errorf("expected 2 serialized units, got %d", len(result.Due))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 serialization failure, got %d", len(result.Failures))
	}
	if result.Failures[0].ItemKey != "course-2" {
		t.Errorf("expected course-2 failure, got %s", result.Failures[0].ItemKey)
	}
}

func TestBaseSerializer_Unsupported(t *testing.T) {
	_, err := BaseSerializer{}.Serialize(domain.ExportableUnit{ItemKey: "x"})
	if !errors.Is(err, domain.ErrUnsupportedOperation) {
		t.Errorf("expected ErrUnsupportedOperation, got %v", err)
	}
}
