package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven/mocks"
)

func testConfig() *domain.ChannelConfiguration {
	return &domain.ChannelConfiguration{
		ID:           "cfg-1",
		CustomerID:   "customer-1",
		ChannelCode:  domain.ChannelCodeCanvas,
		DisplayName:  "Test Canvas",
		BaseURL:      "https://canvas.example.com",
		MaxChunkSize: 10,
		Active:       true,
	}
}

func TestPayloadBuilder_BuildContent(t *testing.T) {
	source := mocks.NewMockDataSource()
	source.Content = []*domain.ContentRecord{
		{CourseID: "course-1", Title: "Intro to Go", Description: "A course"},
		{CourseID: "course-2", Title: "Advanced Go", IsAuditOnly: true},
	}
	builder := NewPayloadBuilder(source, nil)

	units, err := builder.Build(context.Background(), testConfig(), domain.UnitTypeContentMetadata, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Audit-only content is excluded unless the configuration opts in
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].ItemKey != "course-1" {
		t.Errorf("expected item key course-1, got %s", units[0].ItemKey)
	}
	if units[0].UnitType != domain.UnitTypeContentMetadata {
		t.Errorf("unexpected unit type %s", units[0].UnitType)
	}
	if units[0].ContentHash == "" {
		t.Error("expected non-empty content hash")
	}
}

func TestPayloadBuilder_IncludeAuditEnrollments(t *testing.T) {
	source := mocks.NewMockDataSource()
	source.Content = []*domain.ContentRecord{
		{CourseID: "course-1", Title: "Intro"},
		{CourseID: "course-2", Title: "Audit", IsAuditOnly: true},
	}
	builder := NewPayloadBuilder(source, nil)

	config := testConfig()
	config.IncludeAuditEnrollments = true

	units, err := builder.Build(context.Background(), config, domain.UnitTypeContentMetadata, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
}

func TestPayloadBuilder_BuildLearnerData(t *testing.T) {
	completed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := mocks.NewMockDataSource()
	source.Progress = []*domain.ProgressRecord{
		{LearnerID: "learner-1", LearnerEmail: "a@example.com", CourseID: "course-1", IsComplete: true, Grade: 0.95, CompletedAt: &completed},
		{LearnerID: "learner-2", LearnerEmail: "b@example.com", CourseID: "course-1", IsAuditTrack: true},
	}
	builder := NewPayloadBuilder(source, nil)

	units, err := builder.Build(context.Background(), testConfig(), domain.UnitTypeLearnerData, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].ItemKey != "learner-1:course-1" {
		t.Errorf("unexpected item key %s", units[0].ItemKey)
	}
	if units[0].Fields["completed_at"] != "2026-03-01T12:00:00Z" {
		t.Errorf("unexpected completed_at %v", units[0].Fields["completed_at"])
	}
}

func TestPayloadBuilder_DeterministicHashes(t *testing.T) {
	source := mocks.NewMockDataSource()
	source.Content = []*domain.ContentRecord{
		{CourseID: "course-1", Title: "Intro to Go", Description: "A course"},
	}
	builder := NewPayloadBuilder(source, nil)

	first, err := builder.Build(context.Background(), testConfig(), domain.UnitTypeContentMetadata, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := builder.Build(context.Background(), testConfig(), domain.UnitTypeContentMetadata, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first[0].ContentHash != second[0].ContentHash {
		t.Errorf("hash changed across identical builds: %s vs %s", first[0].ContentHash, second[0].ContentHash)
	}
}

func TestPayloadBuilder_UpstreamUnavailable(t *testing.T) {
	source := mocks.NewMockDataSource()
	source.FetchContentFn = func(customerID string) ([]*domain.ContentRecord, error) {
		return nil, errors.New("connection refused")
	}
	builder := NewPayloadBuilder(source, nil)

	_, err := builder.Build(context.Background(), testConfig(), domain.UnitTypeContentMetadata, time.Time{})
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestPayloadBuilder_EmptyResultIsValid(t *testing.T) {
	builder := NewPayloadBuilder(mocks.NewMockDataSource(), nil)

	units, err := builder.Build(context.Background(), testConfig(), domain.UnitTypeContentMetadata, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("expected no units, got %d", len(units))
	}
}

func TestPayloadBuilder_UnknownUnitType(t *testing.T) {
	builder := NewPayloadBuilder(mocks.NewMockDataSource(), nil)

	_, err := builder.Build(context.Background(), testConfig(), domain.UnitType("bogus"), time.Time{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
