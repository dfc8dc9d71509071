package xapi

import (
	"encoding/json"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PayloadSerializer = (*statementSerializer)(nil)

const (
	verbCompleted  = "http://adlnet.gov/expapi/verbs/completed"
	verbProgressed = "http://adlnet.gov/expapi/verbs/progressed"
	activityCourse = "http://adlnet.gov/expapi/activities/course"
)

// statementSerializer renders a learner unit as an xAPI statement.
type statementSerializer struct {
	// platformURL prefixes course IDs to form the activity IRI
	platformURL string
}

func (s statementSerializer) Serialize(unit domain.ExportableUnit) ([]byte, error) {
	email := stringField(unit.Fields, "learner_email")
	courseID := stringField(unit.Fields, "course_id")
	if email == "" || courseID == "" {
		return nil, &domain.SerializationError{ItemKey: unit.ItemKey, Reason: "missing learner_email or course_id"}
	}

	verb := verbProgressed
	if unit.Fields["is_complete"] == true {
		verb = verbCompleted
	}
	grade, _ := unit.Fields["grade"].(float64)

	statement := map[string]any{
		"actor": map[string]any{
			"objectType": "Agent",
			"mbox":       "mailto:" + email,
		},
		"verb": map[string]any{
			"id": verb,
		},
		"object": map[string]any{
			"objectType": "Activity",
			"id":         s.platformURL + "/courses/" + courseID,
			"definition": map[string]any{
				"type": activityCourse,
			},
		},
		"result": map[string]any{
			"completion": unit.Fields["is_complete"] == true,
			"score": map[string]any{
				"scaled": grade,
			},
		},
	}
	if completedAt := stringField(unit.Fields, "completed_at"); completedAt != "" {
		statement["timestamp"] = completedAt
	}

	payload, err := json.Marshal(statement)
	if err != nil {
		return nil, &domain.SerializationError{ItemKey: unit.ItemKey, Reason: err.Error()}
	}
	return payload, nil
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
