package services

import (
	"context"
	"testing"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven/mocks"
)

func newTestScheduler(lock *mocks.MockRunLock) (*mocks.MockSchedulerStore, *mocks.MockTaskQueue, *Scheduler) {
	store := mocks.NewMockSchedulerStore()
	taskQueue := mocks.NewMockTaskQueue()

	cfg := SchedulerConfig{
		Store:     store,
		TaskQueue: taskQueue,
	}
	if lock != nil {
		cfg.Lock = lock
		cfg.LockRequired = true
	}
	return store, taskQueue, NewScheduler(cfg)
}

func TestScheduler_EnqueuesDueSchedules(t *testing.T) {
	store, taskQueue, scheduler := newTestScheduler(nil)

	due := domain.NewScheduledTask("sched-1", "nightly canvas sync", domain.TaskTypeTransmitChannel, "customer-1", time.Hour)
	due.ConfigurationID = "cfg-1"
	due.NextRun = time.Now().Add(-time.Minute)
	_ = store.SaveScheduledTask(context.Background(), due)

	notDue := domain.NewScheduledTask("sched-2", "weekly full sync", domain.TaskTypeTransmitAll, "customer-1", time.Hour)
	notDue.NextRun = time.Now().Add(time.Hour)
	_ = store.SaveScheduledTask(context.Background(), notDue)

	scheduler.checkAndEnqueue(context.Background())

	if taskQueue.PendingCount() != 1 {
		t.Fatalf("expected 1 enqueued task, got %d", taskQueue.PendingCount())
	}

	task, err := taskQueue.DequeueWithTimeout(context.Background(), 0)
	if err != nil || task == nil {
		t.Fatalf("expected a task, got %v / %v", task, err)
	}
	if task.Type != domain.TaskTypeTransmitChannel {
		t.Errorf("unexpected task type %s", task.Type)
	}
	if task.ConfigurationID() != "cfg-1" {
		t.Errorf("unexpected configuration id %s", task.ConfigurationID())
	}
	if task.ActingUser() != "scheduler" {
		t.Errorf("scheduled tasks must act as the scheduler, got %s", task.ActingUser())
	}

	// The schedule advanced so the next cycle does not re-enqueue.
	updated, err := store.GetScheduledTask(context.Background(), "sched-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.LastRun == nil {
		t.Error("expected last run recorded")
	}
	if updated.IsDue() {
		t.Error("schedule must not be due immediately after triggering")
	}

	scheduler.checkAndEnqueue(context.Background())
	if taskQueue.PendingCount() != 0 {
		t.Errorf("expected no new tasks, got %d pending", taskQueue.PendingCount())
	}
}

func TestScheduler_DisabledScheduleSkipped(t *testing.T) {
	store, taskQueue, scheduler := newTestScheduler(nil)

	disabled := domain.NewScheduledTask("sched-1", "paused", domain.TaskTypeTransmitAll, "customer-1", time.Hour)
	disabled.NextRun = time.Now().Add(-time.Minute)
	disabled.Enabled = false
	_ = store.SaveScheduledTask(context.Background(), disabled)

	scheduler.checkAndEnqueue(context.Background())

	if taskQueue.PendingCount() != 0 {
		t.Errorf("disabled schedules must not enqueue, got %d", taskQueue.PendingCount())
	}
}

func TestScheduler_SkipsCycleWhenLockHeld(t *testing.T) {
	lock := mocks.NewMockRunLock()
	store, taskQueue, scheduler := newTestScheduler(lock)

	due := domain.NewScheduledTask("sched-1", "nightly", domain.TaskTypeTransmitAll, "customer-1", time.Hour)
	due.NextRun = time.Now().Add(-time.Minute)
	_ = store.SaveScheduledTask(context.Background(), due)

	lock.SetLockHeld("scheduler", time.Minute)
	scheduler.checkAndEnqueue(context.Background())
	if taskQueue.PendingCount() != 0 {
		t.Fatalf("another instance holds the lock; expected no enqueue, got %d", taskQueue.PendingCount())
	}

	lock.Reset()
	scheduler.checkAndEnqueue(context.Background())
	if taskQueue.PendingCount() != 1 {
		t.Errorf("expected 1 enqueued task once the lock is free, got %d", taskQueue.PendingCount())
	}
}
