package domain

import (
	"testing"
	"time"
)

func TestNewTransmitChannelTask(t *testing.T) {
	task := NewTransmitChannelTask("customer-1", "cfg-1", "user-1", []UnitType{UnitTypeContentMetadata, UnitTypeLearnerData})

	if task.Type != TaskTypeTransmitChannel {
		t.Errorf("unexpected type %s", task.Type)
	}
	if task.CustomerID != "customer-1" {
		t.Errorf("unexpected customer %s", task.CustomerID)
	}
	if task.ConfigurationID() != "cfg-1" {
		t.Errorf("unexpected configuration id %s", task.ConfigurationID())
	}
	if task.ActingUser() != "user-1" {
		t.Errorf("unexpected acting user %s", task.ActingUser())
	}

	unitTypes := task.UnitTypes()
	if len(unitTypes) != 2 || unitTypes[0] != UnitTypeContentMetadata || unitTypes[1] != UnitTypeLearnerData {
		t.Errorf("unexpected unit types %v", unitTypes)
	}
}

func TestTaskUnitTypesEmptyMeansAll(t *testing.T) {
	task := NewTransmitChannelTask("customer-1", "cfg-1", "user-1", nil)
	if len(task.UnitTypes()) != 0 {
		t.Errorf("expected no explicit unit types, got %v", task.UnitTypes())
	}
}

func TestTaskLifecycle(t *testing.T) {
	task := NewTransmitAllTask("customer-1", "scheduler")

	if task.Status != TaskStatusPending {
		t.Fatalf("new task must be pending, got %s", task.Status)
	}
	if !task.IsReady() {
		t.Error("new task must be ready")
	}

	task.MarkProcessing()
	if task.Status != TaskStatusProcessing || task.Attempts != 1 {
		t.Errorf("unexpected state after MarkProcessing: %s attempts=%d", task.Status, task.Attempts)
	}

	task.MarkCompleted()
	if task.Status != TaskStatusCompleted || task.CompletedAt == nil {
		t.Errorf("unexpected state after MarkCompleted: %s", task.Status)
	}
}

func TestTaskRetryBackoff(t *testing.T) {
	task := NewTransmitAllTask("customer-1", "user-1")
	task.MarkProcessing()

	before := time.Now()
	task.Retry("transient failure")

	if task.Status != TaskStatusPending {
		t.Errorf("retried task must be pending, got %s", task.Status)
	}
	if task.Error != "transient failure" {
		t.Errorf("unexpected error %q", task.Error)
	}
	// One attempt gives a 2s backoff.
	delay := task.ScheduledFor.Sub(before)
	if delay < time.Second || delay > 3*time.Second {
		t.Errorf("unexpected backoff %v", delay)
	}
	if task.IsReady() {
		t.Error("backed-off task must not be immediately ready")
	}
}

func TestTaskRetryBackoffCapped(t *testing.T) {
	task := NewTransmitAllTask("customer-1", "user-1")
	task.Attempts = 20

	before := time.Now()
	task.Retry("still failing")

	delay := task.ScheduledFor.Sub(before)
	if delay > 5*time.Minute+time.Second {
		t.Errorf("backoff must cap at 5 minutes, got %v", delay)
	}
}

func TestTaskCanRetry(t *testing.T) {
	task := NewTransmitAllTask("customer-1", "user-1")

	for i := 0; i < task.MaxAttempts; i++ {
		if !task.CanRetry() {
			t.Fatalf("expected retry allowed at attempt %d", task.Attempts)
		}
		task.MarkProcessing()
	}
	if task.CanRetry() {
		t.Error("retries must stop after max attempts")
	}
}

func TestScheduledTaskIsDue(t *testing.T) {
	scheduled := NewScheduledTask("sched-1", "nightly", TaskTypeTransmitAll, "customer-1", time.Hour)

	if !scheduled.IsDue() {
		t.Error("new schedule must be due immediately")
	}

	scheduled.MarkTriggered("")
	if scheduled.IsDue() {
		t.Error("schedule must not be due right after triggering")
	}
	if scheduled.LastRun == nil {
		t.Error("expected last run recorded")
	}
	if got := scheduled.NextRun.Sub(*scheduled.LastRun); got != time.Hour {
		t.Errorf("expected next run one interval out, got %v", got)
	}

	scheduled.Enabled = false
	scheduled.NextRun = time.Now().Add(-time.Minute)
	if scheduled.IsDue() {
		t.Error("disabled schedule must never be due")
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("empty id")
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
