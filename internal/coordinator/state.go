package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

// respawnState is one respawn's claim and queue as seen under its lock.
// Mutations write through tx and keep the in-memory copy in step.
type respawnState struct {
	tx       repository.CoordinationTx
	respawn  *domain.Respawn
	active   *domain.Claim
	queue    []domain.QueueEntry
	now      time.Time
	settings domain.ClaimSettings
	source   string

	events        []event.Event
	notifications []domain.Notification
	report        SweepReport
}

func (st *respawnState) emit(evt event.Event) {
	st.events = append(st.events, evt)
}

func (st *respawnState) notify(ctx context.Context, n domain.Notification) error {
	stored, err := st.tx.InsertNotification(ctx, n)
	if err != nil {
		return err
	}
	st.notifications = append(st.notifications, *stored)
	return nil
}

// liveClaim returns the active claim if it has not run past its expiry
func (st *respawnState) liveClaim() *domain.Claim {
	if st.active != nil && st.active.IsLive(st.now) {
		return st.active
	}
	return nil
}

func (st *respawnState) queueIndex(userID string) int {
	for i := range st.queue {
		if st.queue[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (st *respawnState) removeEntry(ctx context.Context, idx int, source string) error {
	entry := st.queue[idx]
	if err := st.tx.DeleteQueueEntry(ctx, entry.ID); err != nil {
		return err
	}
	st.queue = append(st.queue[:idx], st.queue[idx+1:]...)
	st.emit(event.NewQueueEvent(event.QueueLeft, entry, st.respawn.Code, 0, source))
	return nil
}

func (st *respawnState) ownedCharacter(ctx context.Context, userID string, characterID int64) (*domain.Character, error) {
	character, err := st.tx.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if character.UserID != userID {
		return nil, domain.ErrCharacterNotOwned
	}
	return character, nil
}

// settle applies every timeout that has passed: an overdue claim is
// deactivated and lapsed priority holders lose their queue entry
func (st *respawnState) settle(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if st.active != nil && st.active.IsOverdue(st.now) {
		expired := *st.active
		if err := st.tx.DeactivateClaim(ctx, expired.ID, st.now, domain.ClaimEndReasonExpired); err != nil {
			return fmt.Errorf(ErrMsgSettleFailed, st.respawn.ID, err)
		}
		expired.IsActive = false
		expired.ReleasedAt = &st.now
		expired.EndReason = domain.ClaimEndReasonExpired
		st.active = nil
		st.report.ExpiredClaims++
		st.emit(event.NewClaimEvent(event.ClaimExpired, expired, st.respawn.Code, event.SourceHousekeeping))
		log.Info(LogMsgClaimExpired, "claim_id", expired.ID, "respawn_id", st.respawn.ID, "user_id", expired.UserID)
	}

	kept := st.queue[:0]
	for _, entry := range st.queue {
		if !entry.PriorityLapsed(st.now) {
			kept = append(kept, entry)
			continue
		}
		if err := st.tx.DeleteQueueEntry(ctx, entry.ID); err != nil {
			return fmt.Errorf(ErrMsgSettleFailed, st.respawn.ID, err)
		}
		if err := st.notify(ctx, domain.NewPriorityLapsedNotification(entry, *st.respawn)); err != nil {
			return fmt.Errorf(ErrMsgSettleFailed, st.respawn.ID, err)
		}
		st.report.LapsedPriorities++
		st.emit(event.NewQueueEvent(event.PriorityLapsed, entry, st.respawn.Code, 0, event.SourceHousekeeping))
		log.Info(LogMsgPriorityLapsed, "respawn_id", st.respawn.ID, "user_id", entry.UserID)
	}
	st.queue = kept
	return nil
}

// handoff grants priority to the earliest waiter when the respawn is
// neither claimed nor reserved. Call after settle.
func (st *respawnState) handoff(ctx context.Context) error {
	if st.liveClaim() != nil || domain.PriorityHolder(st.queue, st.now) != nil {
		return nil
	}
	next := domain.NextInLine(st.queue)
	if next == nil {
		return nil
	}

	givenAt := st.now
	expiresAt := st.now.Add(st.settings.PriorityWindow)
	if err := st.tx.GrantPriority(ctx, next.ID, givenAt, expiresAt); err != nil {
		return fmt.Errorf(ErrMsgSettleFailed, st.respawn.ID, err)
	}
	next.PriorityGivenAt = &givenAt
	next.PriorityExpiresAt = &expiresAt

	if err := st.notify(ctx, domain.NewClaimReadyNotification(*next, *st.respawn, st.settings.PriorityWindow)); err != nil {
		return fmt.Errorf(ErrMsgSettleFailed, st.respawn.ID, err)
	}
	st.report.PrioritiesGranted++
	st.emit(event.NewQueueEvent(event.PriorityGranted, *next, st.respawn.Code, domain.PositionOf(st.queue, next.UserID), st.source))

	logger.FromContext(ctx).Info(LogMsgPriorityGranted,
		"respawn_id", st.respawn.ID, "user_id", next.UserID, "expires_at", expiresAt)
	return nil
}
