package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/worker"
)

const (
	logMsgCronScheduled = "Cron job scheduled"
	logMsgJobDropped    = "Scheduled job dropped, worker queue full"
)

// Scheduler hands jobs to a worker pool on fixed intervals or cron specs
type Scheduler struct {
	workerPool *worker.Pool
	cron       *cron.Cron
	quit       chan struct{}
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// New creates a new scheduler
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		cron:       cron.New(cron.WithLocation(time.UTC)),
		quit:       make(chan struct{}),
	}
}

// Schedule registers a job to run at a fixed interval
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.dispatch(job)
			case <-s.quit:
				return
			}
		}
	}()
}

// ScheduleCron registers a job for a standard five-field cron spec or a
// descriptor such as @hourly
func (s *Scheduler) ScheduleCron(spec string, job worker.Job) error {
	id, err := s.cron.AddFunc(spec, func() { s.dispatch(job) })
	if err != nil {
		return err
	}
	logger.FromContext(context.Background()).Info(logMsgCronScheduled, "spec", spec, "entry_id", int(id))
	return nil
}

// Start starts the cron runner; interval jobs start as soon as they are scheduled
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops all scheduled jobs
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		<-s.cron.Stop().Done()
	})
	s.wg.Wait()
}

// dispatch never blocks the ticker; a full queue drops this tick
func (s *Scheduler) dispatch(job worker.Job) {
	if !s.workerPool.TryEnqueue(job) {
		logger.FromContext(context.Background()).Warn(logMsgJobDropped)
	}
}
