package moodle

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

// Moodle webservice functions take flat field maps, so both serializers
// emit a flat JSON object. The client expands the objects into the indexed
// form parameters Moodle expects.

type courseSerializer struct{}

func (courseSerializer) Serialize(unit domain.ExportableUnit) ([]byte, error) {
	courseID := stringField(unit.Fields, "course_id")
	title := stringField(unit.Fields, "title")
	if courseID == "" || title == "" {
		return nil, &domain.SerializationError{ItemKey: unit.ItemKey, Reason: "missing course_id or title"}
	}

	body := map[string]string{
		"idnumber":  courseID,
		"fullname":  title,
		"shortname": courseID,
		"summary":   stringField(unit.Fields, "description"),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &domain.SerializationError{ItemKey: unit.ItemKey, Reason: err.Error()}
	}
	return payload, nil
}

type completionSerializer struct{}

func (completionSerializer) Serialize(unit domain.ExportableUnit) ([]byte, error) {
	email := stringField(unit.Fields, "learner_email")
	courseID := stringField(unit.Fields, "course_id")
	if email == "" || courseID == "" {
		return nil, &domain.SerializationError{ItemKey: unit.ItemKey, Reason: "missing learner_email or course_id"}
	}

	grade, _ := unit.Fields["grade"].(float64)
	body := map[string]string{
		"useremail":      email,
		"courseidnumber": courseID,
		"grade":          fmt.Sprintf("%.2f", grade*100),
		"completed":      boolField(unit.Fields, "is_complete"),
		"timecompleted":  stringField(unit.Fields, "completed_at"),
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

func boolField(fields map[string]any, key string) string {
	if fields[key] == true {
		return "1"
	}
	return "0"
}
