package notification

import (
	"context"
)

// PurgeJob runs Service.Purge on the worker pool
type PurgeJob struct {
	svc Service
}

// NewPurgeJob wraps a notification service as a scheduled job
func NewPurgeJob(svc Service) *PurgeJob {
	return &PurgeJob{svc: svc}
}

// Process implements worker.Job
func (j *PurgeJob) Process(ctx context.Context) error {
	_, err := j.svc.Purge(ctx)
	return err
}
