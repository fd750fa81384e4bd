package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// Housekeeper runs one full housekeeping pass
type Housekeeper interface {
	RunHousekeeping(ctx context.Context) (coordinator.HousekeepingReport, error)
}

// HousekeepingWorker runs housekeeping on a fixed interval. Runs never overlap;
// a tick that arrives while a pass is still going is skipped.
type HousekeepingWorker struct {
	BaseWorker
	housekeeper Housekeeper
	interval    time.Duration
	timeout     time.Duration
	running     atomic.Bool
	runs        atomic.Int64
}

// NewHousekeepingWorker creates a worker that calls housekeeper every interval
func NewHousekeepingWorker(housekeeper Housekeeper, interval time.Duration) *HousekeepingWorker {
	w := &HousekeepingWorker{
		housekeeper: housekeeper,
		interval:    interval,
		timeout:     DefaultJobTimeout,
	}
	w.init()
	return w
}

// Start runs the first pass immediately and then every interval
func (w *HousekeepingWorker) Start() {
	logger.FromContext(context.Background()).Info(LogMsgHousekeepingStarted, "interval", w.interval)
	w.scheduleNext(0)
}

func (w *HousekeepingWorker) scheduleNext(delay time.Duration) {
	w.schedule(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		_ = w.Process(ctx)

		select {
		case <-w.shutdown:
		default:
			w.scheduleNext(w.interval)
		}
	})
}

// Process implements Job so a pass can also be queued on a Pool
func (w *HousekeepingWorker) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if !w.running.CompareAndSwap(false, true) {
		log.Debug(LogMsgHousekeepingSkipped)
		return nil
	}
	defer w.running.Store(false)

	report, err := w.housekeeper.RunHousekeeping(ctx)
	w.runs.Add(1)
	if err != nil {
		log.Error(LogMsgHousekeepingFailed, "error", err)
		return err
	}
	if !report.Empty() || report.PurgedNotifications > 0 {
		log.Info(LogMsgHousekeepingCompleted,
			"expired_claims", report.ExpiredClaims,
			"lapsed_priorities", report.LapsedPriorities,
			"priorities_granted", report.PrioritiesGranted,
			"expiring_warnings", report.ExpiringWarnings,
			"purged_notifications", report.PurgedNotifications)
	}
	return nil
}

// Runs reports how many passes have completed
func (w *HousekeepingWorker) Runs() int64 {
	return w.runs.Load()
}

// Shutdown cancels the pending pass and waits for an in-flight one
func (w *HousekeepingWorker) Shutdown(ctx context.Context) error {
	return w.shutdownInternal(ctx, housekeepingWorkerName)
}
