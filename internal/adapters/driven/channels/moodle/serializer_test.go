package moodle

import (
	"encoding/json"
	"testing"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

func TestCourseSerializer_FlatFields(t *testing.T) {
	unit := domain.ExportableUnit{
		ItemKey:  "course-1",
		UnitType: domain.UnitTypeContentMetadata,
		Fields: map[string]any{
			"course_id":   "course-1",
			"title":       "Intro to Go",
			"description": "A course",
		},
	}

	payload, err := courseSerializer{}.Serialize(unit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]string
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("payload is not a flat object: %v", err)
	}

	if body["idnumber"] != "course-1" || body["shortname"] != "course-1" {
		t.Errorf("expected course_id in idnumber and shortname, got %v", body)
	}
	if body["fullname"] != "Intro to Go" {
		t.Errorf("expected fullname Intro to Go, got %s", body["fullname"])
	}
}

func TestCourseSerializer_MissingRequiredFields(t *testing.T) {
	testCases := []struct {
		name   string
		fields map[string]any
	}{
		{"missing course_id", map[string]any{"title": "Intro"}},
		{"missing title", map[string]any{"course_id": "course-1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			unit := domain.ExportableUnit{ItemKey: "course-1", Fields: tc.fields}
			if _, err := (courseSerializer{}).Serialize(unit); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCompletionSerializer_Fields(t *testing.T) {
	unit := domain.ExportableUnit{
		ItemKey:  "learner-1:course-1",
		UnitType: domain.UnitTypeLearnerData,
		Fields: map[string]any{
			"learner_email": "learner@example.com",
			"course_id":     "course-1",
			"grade":         0.875,
			"is_complete":   true,
			"completed_at":  "2026-03-01T12:00:00Z",
		},
	}

	payload, err := completionSerializer{}.Serialize(unit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]string
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("payload is not a flat object: %v", err)
	}

	if body["grade"] != "87.50" {
		t.Errorf("expected grade 87.50, got %s", body["grade"])
	}
	if body["completed"] != "1" {
		t.Errorf("expected completed 1, got %s", body["completed"])
	}
	if body["useremail"] != "learner@example.com" {
		t.Errorf("expected useremail, got %s", body["useremail"])
	}
}

func TestCompletionSerializer_IncompleteIsZero(t *testing.T) {
	unit := domain.ExportableUnit{
		ItemKey: "learner-1:course-1",
		Fields: map[string]any{
			"learner_email": "learner@example.com",
			"course_id":     "course-1",
		},
	}

	payload, err := completionSerializer{}.Serialize(unit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]string
	json.Unmarshal(payload, &body)
	if body["completed"] != "0" {
		t.Errorf("expected completed 0, got %s", body["completed"])
	}
}
