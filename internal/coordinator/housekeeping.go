package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// SweepReport counts what a housekeeping pass changed
type SweepReport struct {
	ExpiredClaims     int `json:"expired_claims"`
	LapsedPriorities  int `json:"lapsed_priorities"`
	PrioritiesGranted int `json:"priorities_granted"`
	ExpiringWarnings  int `json:"expiring_warnings"`
}

// Add accumulates another report into r
func (r *SweepReport) Add(other SweepReport) {
	r.ExpiredClaims += other.ExpiredClaims
	r.LapsedPriorities += other.LapsedPriorities
	r.PrioritiesGranted += other.PrioritiesGranted
	r.ExpiringWarnings += other.ExpiringWarnings
}

// Empty reports whether the pass changed nothing
func (r SweepReport) Empty() bool {
	return r == SweepReport{}
}

// HousekeepingReport is a sweep plus the notification purge
type HousekeepingReport struct {
	SweepReport
	PurgedNotifications int64     `json:"purged_notifications"`
	RanAt               time.Time `json:"ran_at"`
}

// HandleExpiredClaims deactivates every overdue claim and hands each respawn on
func (s *service) HandleExpiredClaims(ctx context.Context) (SweepReport, error) {
	claims, err := s.repo.ListOverdueClaims(ctx, s.now())
	if err != nil {
		return SweepReport{}, fmt.Errorf(ErrMsgScanFailed, err)
	}
	ids := make([]int64, 0, len(claims))
	for _, c := range claims {
		ids = append(ids, c.RespawnID)
	}
	return s.settleRespawns(ctx, ids)
}

// CleanupExpiredPriorities drops lapsed priority holders and re-grants priority
// on respawns left waiting with nobody holding it
func (s *service) CleanupExpiredPriorities(ctx context.Context) (SweepReport, error) {
	now := s.now()
	lapsed, err := s.repo.ListLapsedPriorities(ctx, now)
	if err != nil {
		return SweepReport{}, fmt.Errorf(ErrMsgScanFailed, err)
	}
	stalled, err := s.repo.ListStalledRespawns(ctx, now)
	if err != nil {
		return SweepReport{}, fmt.Errorf(ErrMsgScanFailed, err)
	}

	ids := make([]int64, 0, len(lapsed)+len(stalled))
	for _, e := range lapsed {
		ids = append(ids, e.RespawnID)
	}
	ids = append(ids, stalled...)
	return s.settleRespawns(ctx, ids)
}

// WarnExpiringClaims sends one claim_expiring notification per claim entering
// the warning window
func (s *service) WarnExpiringClaims(ctx context.Context) (SweepReport, error) {
	if s.expiringWarning <= 0 {
		return SweepReport{}, nil
	}
	now := s.now()
	claims, err := s.repo.ListClaimsNearExpiry(ctx, now, now.Add(s.expiringWarning))
	if err != nil {
		return SweepReport{}, fmt.Errorf(ErrMsgScanFailed, err)
	}

	var (
		total SweepReport
		errs  []error
	)
	for _, c := range claims {
		claimID := c.ID
		report, err := s.withRespawnReport(ctx, c.RespawnID, event.SourceHousekeeping, func(st *respawnState) error {
			live := st.liveClaim()
			if live == nil || live.ID != claimID || live.ExpiringNotifiedAt != nil {
				return nil
			}
			if err := st.notify(ctx, domain.NewClaimExpiringNotification(*live, *st.respawn, st.now)); err != nil {
				return err
			}
			if err := st.tx.MarkExpiringNotified(ctx, live.ID, st.now); err != nil {
				return err
			}
			st.report.ExpiringWarnings++
			logger.FromContext(ctx).Info(LogMsgExpiringWarned, "claim_id", live.ID, "user_id", live.UserID)
			return nil
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total.Add(report)
	}
	return total, errors.Join(errs...)
}

// Sweep runs every timed transition once. Each step is idempotent.
func (s *service) Sweep(ctx context.Context) (SweepReport, error) {
	var total SweepReport
	var errs []error

	for _, step := range []func(context.Context) (SweepReport, error){
		s.HandleExpiredClaims,
		s.CleanupExpiredPriorities,
		s.WarnExpiringClaims,
	} {
		report, err := step(ctx)
		total.Add(report)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if !total.Empty() {
		logger.FromContext(ctx).Info(LogMsgSweepCompleted,
			"expired_claims", total.ExpiredClaims,
			"lapsed_priorities", total.LapsedPriorities,
			"priorities_granted", total.PrioritiesGranted,
			"expiring_warnings", total.ExpiringWarnings)
	}
	return total, errors.Join(errs...)
}

// RunHousekeeping sweeps, purges stale notifications and publishes a summary event
func (s *service) RunHousekeeping(ctx context.Context) (HousekeepingReport, error) {
	sweep, err := s.Sweep(ctx)
	report := HousekeepingReport{SweepReport: sweep, RanAt: s.now()}
	errs := []error{err}

	if s.purger != nil {
		purged, perr := s.purger.Purge(ctx)
		if perr != nil {
			logger.FromContext(ctx).Error(LogMsgPurgeFailed, "error", perr)
			errs = append(errs, fmt.Errorf(ErrMsgPurgeNotification, perr))
		}
		report.PurgedNotifications = purged
	}

	evt := event.NewHousekeepingCompletedEvent(event.HousekeepingCompletedPayloadV1{
		ExpiredClaims:       report.ExpiredClaims,
		LapsedPriorities:    report.LapsedPriorities,
		PrioritiesGranted:   report.PrioritiesGranted,
		ExpiringWarnings:    report.ExpiringWarnings,
		PurgedNotifications: report.PurgedNotifications,
		RanAt:               report.RanAt,
	})
	if perr := s.bus.Publish(ctx, evt); perr != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", perr)
	}

	return report, errors.Join(errs...)
}

// settleRespawns locks and settles each distinct respawn once.
// A failing respawn is logged and does not stop the others.
func (s *service) settleRespawns(ctx context.Context, respawnIDs []int64) (SweepReport, error) {
	log := logger.FromContext(ctx)

	var (
		total SweepReport
		errs  []error
	)
	for _, id := range uniqueSorted(respawnIDs) {
		report, err := s.withRespawnReport(ctx, id, event.SourceHousekeeping, func(st *respawnState) error {
			if err := st.settle(ctx); err != nil {
				return err
			}
			return st.handoff(ctx)
		})
		if err != nil {
			if errors.Is(err, domain.ErrRespawnNotFound) {
				continue
			}
			log.Error(LogMsgSweepRespawnFailed, "respawn_id", id, "error", err)
			errs = append(errs, err)
			continue
		}
		total.Add(report)
	}
	return total, errors.Join(errs...)
}

// uniqueSorted dedupes ids and orders them so sweeps always lock in the same order
func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
