package domain

import "time"

// RunState is the transmitter state machine position for one run
type RunState string

const (
	RunStatePending      RunState = "pending"
	RunStateExporting    RunState = "exporting"
	RunStateTransmitting RunState = "transmitting"
	RunStateFinalizing   RunState = "finalizing"
	RunStateDone         RunState = "done"
	RunStateFailed       RunState = "failed"
	RunStateCancelled    RunState = "cancelled"
)

// MaxReportedFailures caps the per-unit failure details carried on a
// RunResult. Counts are always exact; only the detail list is truncated.
const MaxReportedFailures = 25

// UnitFailure describes one failed unit for caller-visible reporting.
type UnitFailure struct {
	ItemKey  string   `json:"item_key"`
	UnitType UnitType `json:"unit_type"`
	Detail   string   `json:"detail"`
}

// RunResult summarizes one transmitter run. It is constructed fresh per run
// and discarded after being surfaced.
type RunResult struct {
	ConfigurationID string        `json:"configuration_id"`
	State           RunState      `json:"state"`
	Attempted       int           `json:"attempted"`
	Succeeded       int           `json:"succeeded"`
	Failed          int           `json:"failed"`
	Skipped         int           `json:"skipped"`
	Failures        []UnitFailure `json:"failures,omitempty"`
	Error           string        `json:"error,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        float64       `json:"duration_seconds"`
}

// RecordFailure counts a failed unit and keeps its detail up to the
// reporting cap.
func (r *RunResult) RecordFailure(itemKey string, unitType UnitType, detail string) {
	r.Failed++
	if len(r.Failures) < MaxReportedFailures {
		r.Failures = append(r.Failures, UnitFailure{
			ItemKey:  itemKey,
			UnitType: unitType,
			Detail:   detail,
		})
	}
}

// RunContext carries the identity under which a run executes: the acting
// user and the enterprise customer, injected by the scheduler or API caller.
// It replaces any ambient global task state.
type RunContext struct {
	RunID       string    `json:"run_id"`
	ActingUser  string    `json:"acting_user"`
	CustomerID  string    `json:"customer_id"`
	TriggeredBy string    `json:"triggered_by"` // "schedule" or "api"
	StartedAt   time.Time `json:"started_at"`
}

// NewRunContext creates a run context with a fresh run ID.
func NewRunContext(actingUser, customerID, triggeredBy string) *RunContext {
	return &RunContext{
		RunID:       GenerateID(),
		ActingUser:  actingUser,
		CustomerID:  customerID,
		TriggeredBy: triggeredBy,
		StartedAt:   time.Now(),
	}
}
