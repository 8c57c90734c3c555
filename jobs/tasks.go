package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInventoryExpiryScan lists stocked batches close to expiry.
	TaskInventoryExpiryScan = "inventory:expiry_scan"
	// TaskDashboardWarmup invalidates and repopulates the dashboard cache.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskIdempotencyCleanup purges expired replay keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// Cron specs used by the worker scheduler.
const (
	ExpiryScanSpec      = "0 1 * * *"
	DashboardWarmupSpec = "*/15 * * * *"
	CleanupSpec         = "30 2 * * *"
)

// ExpiryScanPayload carries the warning window. Zero means the job default.
type ExpiryScanPayload struct {
	Days int `json:"days"`
}

// DashboardWarmupPayload controls whether the cache version is bumped first.
type DashboardWarmupPayload struct {
	Invalidate bool `json:"invalidate"`
}

// IdempotencyCleanupPayload overrides the retention. Zero means the job default.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewExpiryScanTask builds an inventory:expiry_scan task.
func NewExpiryScanTask(days int) (*asynq.Task, error) {
	data, err := json.Marshal(ExpiryScanPayload{Days: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryExpiryScan, data), nil
}

// NewDashboardWarmupTask builds a dashboard:warmup task.
func NewDashboardWarmupTask(invalidate bool) (*asynq.Task, error) {
	data, err := json.Marshal(DashboardWarmupPayload{Invalidate: invalidate})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// NewIdempotencyCleanupTask builds an idempotency:cleanup task.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// DefaultSchedule returns the cron registrations of the worker.
func DefaultSchedule(expiryDays int) ([]CronRegistration, error) {
	scan, err := NewExpiryScanTask(expiryDays)
	if err != nil {
		return nil, err
	}
	warmup, err := NewDashboardWarmupTask(true)
	if err != nil {
		return nil, err
	}
	cleanup, err := NewIdempotencyCleanupTask(0)
	if err != nil {
		return nil, err
	}
	return []CronRegistration{
		{Spec: ExpiryScanSpec, Task: scan, Options: []asynq.Option{asynq.MaxRetry(3)}},
		{Spec: DashboardWarmupSpec, Task: warmup, Options: []asynq.Option{asynq.MaxRetry(1)}},
		{Spec: CleanupSpec, Task: cleanup, Options: []asynq.Option{asynq.MaxRetry(3)}},
	}, nil
}

func newTaskID(taskType string) string {
	return taskType + ":" + uuid.NewString()
}
