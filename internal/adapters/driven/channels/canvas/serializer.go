package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.PayloadSerializer = (*courseSerializer)(nil)
	_ driven.PayloadSerializer = (*completionSerializer)(nil)
)

// courseSerializer renders a content unit as a Canvas course body.
type courseSerializer struct{}

func (courseSerializer) Serialize(unit domain.ExportableUnit) ([]byte, error) {
	courseID := stringField(unit.Fields, "course_id")
	if courseID == "" {
		return nil, &domain.SerializationError{ItemKey: unit.ItemKey, Reason: "missing course_id"}
	}

	body := map[string]any{
		"course": map[string]any{
			"integration_id":     courseID,
			"name":               stringField(unit.Fields, "title"),
			"public_description": stringField(unit.Fields, "description"),
			"image_url":          stringField(unit.Fields, "image_url"),
			"start_at":           stringField(unit.Fields, "start_at"),
			"end_at":             stringField(unit.Fields, "end_at"),
			"self_enrollment":    true,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &domain.SerializationError{ItemKey: unit.ItemKey, Reason: err.Error()}
	}
	return payload, nil
}

// completionSerializer renders a learner unit as a Canvas grade-override
// body. Canvas expects the grade as a 0-100 percentage.
type completionSerializer struct{}

func (completionSerializer) Serialize(unit domain.ExportableUnit) ([]byte, error) {
	email := stringField(unit.Fields, "learner_email")
	courseID := stringField(unit.Fields, "course_id")
	if email == "" || courseID == "" {
		return nil, &domain.SerializationError{ItemKey: unit.ItemKey, Reason: "missing learner_email or course_id"}
	}

	grade, _ := unit.Fields["grade"].(float64)
	body := map[string]any{
		"user_email":            email,
		"course_integration_id": courseID,
		"grade":                 fmt.Sprintf("%.1f%%", grade*100),
		"completed":             unit.Fields["is_complete"] == true,
		"completed_at":          stringField(unit.Fields, "completed_at"),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &domain.SerializationError{ItemKey: unit.ItemKey, Reason: err.Error()}
	}
	return payload, nil
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
