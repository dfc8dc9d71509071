package canvas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

func TestCourseSerializer_Body(t *testing.T) {
	unit := domain.ExportableUnit{
		ItemKey:  "course-1",
		UnitType: domain.UnitTypeContentMetadata,
		Fields: map[string]any{
			"course_id":   "course-1",
			"title":       "Intro to Go",
			"description": "A course",
			"image_url":   "https://cdn.example.com/go.png",
		},
	}

	payload, err := courseSerializer{}.Serialize(unit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	course := body["course"]
	if course == nil {
		t.Fatal("expected top-level course object")
	}
	if course["integration_id"] != "course-1" {
		t.Errorf("expected integration_id course-1, got %v", course["integration_id"])
	}
	if course["name"] != "Intro to Go" {
		t.Errorf("expected name Intro to Go, got %v", course["name"])
	}
	if course["self_enrollment"] != true {
		t.Errorf("expected self_enrollment true, got %v", course["self_enrollment"])
	}
}

func TestCourseSerializer_MissingCourseID(t *testing.T) {
	unit := domain.ExportableUnit{
		ItemKey:  "course-1",
		UnitType: domain.UnitTypeContentMetadata,
		Fields:   map[string]any{"title": "No ID"},
	}

	_, err := courseSerializer{}.Serialize(unit)
	if err == nil {
		t.Fatal("expected error for missing course_id")
	}

	var serr *domain.SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SerializationError, got %T", err)
	}
	if serr.ItemKey != "course-1" {
		t.Errorf("expected item key course-1, got %s", serr.ItemKey)
	}
}

func TestCompletionSerializer_GradePercentage(t *testing.T) {
	unit := domain.ExportableUnit{
		ItemKey:  "learner-1:course-1",
		UnitType: domain.UnitTypeLearnerData,
		Fields: map[string]any{
			"learner_email": "learner@example.com",
			"course_id":     "course-1",
			"grade":         0.95,
			"is_complete":   true,
			"completed_at":  "2026-03-01T12:00:00Z",
		},
	}

	payload, err := completionSerializer{}.Serialize(unit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if body["grade"] != "95.0%" {
		t.Errorf("expected grade 95.0%%, got %v", body["grade"])
	}
	if body["completed"] != true {
		t.Errorf("expected completed true, got %v", body["completed"])
	}
	if body["course_integration_id"] != "course-1" {
		t.Errorf("expected course_integration_id course-1, got %v", body["course_integration_id"])
	}
}

func TestCompletionSerializer_MissingFields(t *testing.T) {
	testCases := []struct {
		name   string
		fields map[string]any
	}{
		{"missing email", map[string]any{"course_id": "course-1"}},
		{"missing course", map[string]any{"learner_email": "learner@example.com"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			unit := domain.ExportableUnit{
				ItemKey:  "learner-1:course-1",
				UnitType: domain.UnitTypeLearnerData,
				Fields:   tc.fields,
			}

			_, err := completionSerializer{}.Serialize(unit)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
