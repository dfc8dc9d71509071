package domain

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeTransmitChannel runs the transmitter for one configuration
	TaskTypeTransmitChannel TaskType = "transmit_channel"
	// TaskTypeTransmitAll runs the transmitter for every active
	// configuration of a customer
	TaskTypeTransmitAll TaskType = "transmit_all"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a background job to be processed by workers.
// Delivery is at-least-once; the idempotent due-set computation makes
// duplicate delivery of transmit tasks safe.
type Task struct {
	ID   string   `json:"id"`
	Type TaskType `json:"type"`

	// CustomerID is the enterprise customer this task belongs to
	CustomerID string `json:"customer_id"`

	// Payload contains task-specific data
	// For transmit_channel: {"configuration_id": "...", "unit_types": "content_metadata,learner_data", "acting_user": "..."}
	// For transmit_all: {"acting_user": "..."}
	Payload map[string]string `json:"payload"`

	Status TaskStatus `json:"status"`

	// Priority determines processing order (higher = more urgent)
	Priority int `json:"priority"`

	Attempts    int    `json:"attempts"`
	MaxAttempts int    `json:"max_attempts"`
	Error       string `json:"error,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ScheduledFor time.Time  `json:"scheduled_for"`
}

// NewTask creates a new task with default values
func NewTask(taskType TaskType, customerID string, payload map[string]string) *Task {
	now := time.Now()
	return &Task{
		ID:           GenerateID(),
		Type:         taskType,
		CustomerID:   customerID,
		Payload:      payload,
		Status:       TaskStatusPending,
		Priority:     0,
		Attempts:     0,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewTransmitChannelTask creates a task to run one channel configuration.
// Empty unitTypes means all unit types.
func NewTransmitChannelTask(customerID, configurationID, actingUser string, unitTypes []UnitType) *Task {
	payload := map[string]string{
		"configuration_id": configurationID,
		"acting_user":      actingUser,
	}
	if len(unitTypes) > 0 {
		strs := make([]string, len(unitTypes))
		for i, ut := range unitTypes {
			strs[i] = string(ut)
		}
		payload["unit_types"] = strings.Join(strs, ",")
	}
	return NewTask(TaskTypeTransmitChannel, customerID, payload)
}

// NewTransmitAllTask creates a task to run every active configuration for a
// customer.
func NewTransmitAllTask(customerID, actingUser string) *Task {
	return NewTask(TaskTypeTransmitAll, customerID, map[string]string{
		"acting_user": actingUser,
	})
}

// ConfigurationID extracts the configuration_id from the payload.
func (t *Task) ConfigurationID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["configuration_id"]
}

// ActingUser extracts the acting_user from the payload.
func (t *Task) ActingUser() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["acting_user"]
}

// UnitTypes extracts the requested unit types from the payload.
// Empty means all unit types.
func (t *Task) UnitTypes() []UnitType {
	if t.Payload == nil || t.Payload["unit_types"] == "" {
		return nil
	}
	parts := strings.Split(t.Payload["unit_types"], ",")
	types := make([]UnitType, 0, len(parts))
	for _, p := range parts {
		types = append(types, UnitType(p))
	}
	return types
}

// CanRetry returns true if the task can be retried
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady returns true if the task is ready to be processed
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && time.Now().After(t.ScheduledFor)
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry resets the task for retry with exponential backoff
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err

	// Exponential backoff: 1s, 2s, 4s, 8s, etc.
	backoff := time.Duration(1<<t.Attempts) * time.Second
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	t.ScheduledFor = now.Add(backoff)
}

// ScheduledTask represents a recurring sync schedule for a configuration.
type ScheduledTask struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       TaskType `json:"type"`
	CustomerID string   `json:"customer_id"`

	// ConfigurationID is set for transmit_channel schedules
	ConfigurationID string `json:"configuration_id,omitempty"`

	// Interval is how often to run the task
	Interval time.Duration `json:"interval"`

	Enabled   bool       `json:"enabled"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   time.Time  `json:"next_run"`
	LastError string     `json:"last_error,omitempty"`
}

// NewScheduledTask creates a new scheduled task
func NewScheduledTask(id, name string, taskType TaskType, customerID string, interval time.Duration) *ScheduledTask {
	return &ScheduledTask{
		ID:         id,
		Name:       name,
		Type:       taskType,
		CustomerID: customerID,
		Interval:   interval,
		Enabled:    true,
		NextRun:    time.Now(),
	}
}

// MarkTriggered records a trigger and computes the next run time.
func (s *ScheduledTask) MarkTriggered(lastError string) {
	now := time.Now()
	s.LastRun = &now
	s.NextRun = now.Add(s.Interval)
	s.LastError = lastError
}

// IsDue reports whether the schedule should trigger now.
func (s *ScheduledTask) IsDue() bool {
	return s.Enabled && !time.Now().Before(s.NextRun)
}
