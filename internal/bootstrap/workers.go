package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/RespawnQueue_Go/internal/config"
	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/notification"
	"github.com/osse101/RespawnQueue_Go/internal/scheduler"
	"github.com/osse101/RespawnQueue_Go/internal/worker"
)

// Background is the set of running background workers
type Background struct {
	Pool         *worker.Pool
	Scheduler    *scheduler.Scheduler
	Housekeeping *worker.HousekeepingWorker
}

// StartBackground starts the housekeeping worker and the cron-driven
// notification purge. The purge also runs inside every housekeeping pass; the
// cron entry keeps it going when sweeps fail.
func StartBackground(cfg *config.Config, coord coordinator.Service, notifications notification.Service) (*Background, error) {
	pool := worker.NewPool(WorkerPoolSize, WorkerQueueSize)
	sched := scheduler.New(pool)

	if err := sched.ScheduleCron(cfg.NotificationPurgeSchedule, notification.NewPurgeJob(notifications)); err != nil {
		return nil, fmt.Errorf("%s %q: %w", ErrMsgFailedSchedulePurge, cfg.NotificationPurgeSchedule, err)
	}

	housekeeping := worker.NewHousekeepingWorker(coord, cfg.HousekeepingInterval)

	pool.Start()
	sched.Start()
	housekeeping.Start()

	slog.Info(LogMsgBackgroundStarted,
		"pool_size", WorkerPoolSize,
		"housekeeping_interval", cfg.HousekeepingInterval,
		"purge_schedule", cfg.NotificationPurgeSchedule)

	return &Background{Pool: pool, Scheduler: sched, Housekeeping: housekeeping}, nil
}
