package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

// Service is the only writer of claims and queue entries.
// Every mutation runs in one transaction holding the respawn lock.
type Service interface {
	// ClaimRespawn takes the respawn for the caller's character.
	// A priority holder other than the caller blocks the claim.
	ClaimRespawn(ctx context.Context, userID string, respawnID, characterID int64) (*domain.Claim, error)

	// ReleaseClaim ends the caller's claim and hands priority to the next in line
	ReleaseClaim(ctx context.Context, userID string, claimID int64) error

	// JoinQueue appends the caller to the respawn's queue and reports the 1-based position
	JoinQueue(ctx context.Context, userID string, respawnID, characterID int64) (*JoinResult, error)

	// LeaveQueue removes the caller's entry, passing on priority if it was held
	LeaveQueue(ctx context.Context, userID string, respawnID int64) error

	// Housekeeping
	HandleExpiredClaims(ctx context.Context) (SweepReport, error)
	CleanupExpiredPriorities(ctx context.Context) (SweepReport, error)
	WarnExpiringClaims(ctx context.Context) (SweepReport, error)
	Sweep(ctx context.Context) (SweepReport, error)
	RunHousekeeping(ctx context.Context) (HousekeepingReport, error)

	// Reads
	GetUserState(ctx context.Context, userID string) (*UserState, error)
	ClaimSettings(ctx context.Context) domain.ClaimSettings
	UpdateClaimSettings(ctx context.Context, settings domain.ClaimSettings) error
}

// SettingsProvider supplies the current claim timings
type SettingsProvider interface {
	ClaimSettings(ctx context.Context) domain.ClaimSettings
	UpdateClaimSettings(ctx context.Context, settings domain.ClaimSettings) error
}

// Purger removes stale notifications during a full housekeeping run
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// JoinResult is the outcome of a queue join
type JoinResult struct {
	Entry    domain.QueueEntry `json:"entry"`
	Position int               `json:"position"`
}

// UserQueueEntry is a queue entry with its current wait position
type UserQueueEntry struct {
	domain.QueueEntry
	Position int `json:"position"`
}

// UserState lists what a user currently holds and waits for
type UserState struct {
	Claims       []domain.Claim   `json:"claims"`
	QueueEntries []UserQueueEntry `json:"queue_entries"`
}

type service struct {
	repo            repository.Coordination
	settings        SettingsProvider
	bus             event.Bus
	purger          Purger
	expiringWarning time.Duration
	now             func() time.Time
}

// NewService creates the claim/queue coordinator.
// purger may be nil, in which case RunHousekeeping skips the notification purge.
func NewService(repo repository.Coordination, settings SettingsProvider, bus event.Bus, expiringWarning time.Duration, purger Purger) Service {
	return &service{
		repo:            repo,
		settings:        settings,
		bus:             bus,
		purger:          purger,
		expiringWarning: expiringWarning,
		now:             time.Now,
	}
}

// ClaimRespawn claims a respawn using check-then-lock
func (s *service) ClaimRespawn(ctx context.Context, userID string, respawnID, characterID int64) (*domain.Claim, error) {
	log := logger.FromContext(ctx)

	// Cheap unlocked check rejects most losers without touching the lock
	if active, err := s.repo.GetActiveClaim(ctx, respawnID); err == nil && active != nil && active.IsLive(s.now()) {
		if active.UserID == userID {
			return nil, domain.ErrAlreadyHoldClaim
		}
		return nil, domain.ErrRespawnAlreadyClaimed
	}

	var claim *domain.Claim
	err := s.withRespawn(ctx, respawnID, event.SourceUser, func(st *respawnState) error {
		if err := st.settle(ctx); err != nil {
			return err
		}
		// A caller who is next in line takes the respawn directly
		if next := domain.NextInLine(st.queue); next == nil || next.UserID != userID {
			if err := st.handoff(ctx); err != nil {
				return err
			}
		}

		if st.liveClaim() != nil {
			log.Debug(LogMsgClaimRaceLost, "respawn_id", respawnID, "user_id", userID)
			if st.active.UserID == userID {
				return domain.ErrAlreadyHoldClaim
			}
			return domain.ErrRespawnAlreadyClaimed
		}
		if holder := domain.PriorityHolder(st.queue, st.now); holder != nil && holder.UserID != userID {
			return domain.ErrPriorityReserved
		}

		character, err := st.ownedCharacter(ctx, userID, characterID)
		if err != nil {
			return err
		}
		member, err := st.tx.GetMember(ctx, userID)
		if err != nil {
			return err
		}

		created, err := st.tx.InsertClaim(ctx, domain.Claim{
			RespawnID:     respawnID,
			UserID:        userID,
			CharacterID:   character.ID,
			CharacterName: character.Name,
			ClaimedAt:     st.now,
			ExpiresAt:     st.now.Add(st.settings.DurationFor(member.RoleTier)),
		})
		if err != nil {
			return err
		}
		st.active = created
		st.emit(event.NewClaimEvent(event.ClaimCreated, *created, st.respawn.Code, event.SourceUser))

		// Claiming consumes the caller's place in the queue, priority included
		if idx := st.queueIndex(userID); idx >= 0 {
			if err := st.removeEntry(ctx, idx, event.SourceUser); err != nil {
				return err
			}
		}

		claim = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info(LogMsgClaimCreated, "respawn_id", respawnID, "claim_id", claim.ID, "user_id", userID, "expires_at", claim.ExpiresAt)
	return claim, nil
}

// ReleaseClaim releases an owned, active claim
func (s *service) ReleaseClaim(ctx context.Context, userID string, claimID int64) error {
	log := logger.FromContext(ctx)

	tx, err := s.repo.BeginCoordinationTx(ctx)
	if err != nil {
		return fmt.Errorf(ErrMsgBeginTxFailed, err)
	}
	// Unlocked read to find which respawn to lock; rechecked under the lock
	claim, err := tx.GetClaim(ctx, claimID)
	repository.SafeRollback(ctx, tx)
	if err != nil {
		return err
	}

	err = s.withRespawn(ctx, claim.RespawnID, event.SourceUser, func(st *respawnState) error {
		current, err := st.tx.GetClaim(ctx, claimID)
		if err != nil {
			return err
		}
		if current.UserID != userID {
			return domain.ErrNotClaimOwner
		}
		if !current.IsActive {
			return domain.ErrClaimNotActive
		}

		// An overdue claim the owner releases is recorded as released, not expired
		if err := st.tx.DeactivateClaim(ctx, current.ID, st.now, domain.ClaimEndReasonReleased); err != nil {
			return err
		}
		current.IsActive = false
		current.ReleasedAt = &st.now
		current.EndReason = domain.ClaimEndReasonReleased
		st.active = nil
		st.emit(event.NewClaimEvent(event.ClaimReleased, *current, st.respawn.Code, event.SourceUser))

		if err := st.settle(ctx); err != nil {
			return err
		}
		return st.handoff(ctx)
	})
	if err != nil {
		return err
	}

	log.Info(LogMsgClaimReleased, "claim_id", claimID, "respawn_id", claim.RespawnID, "user_id", userID)
	return nil
}

// JoinQueue adds the caller to the respawn queue.
// Joining a free, unreserved respawn grants priority immediately.
func (s *service) JoinQueue(ctx context.Context, userID string, respawnID, characterID int64) (*JoinResult, error) {
	log := logger.FromContext(ctx)

	var result *JoinResult
	err := s.withRespawn(ctx, respawnID, event.SourceUser, func(st *respawnState) error {
		if err := st.settle(ctx); err != nil {
			return err
		}

		if live := st.liveClaim(); live != nil && live.UserID == userID {
			return domain.ErrAlreadyHoldClaim
		}
		if st.queueIndex(userID) >= 0 {
			return domain.ErrAlreadyInQueue
		}

		character, err := st.ownedCharacter(ctx, userID, characterID)
		if err != nil {
			return err
		}

		entry, err := st.tx.InsertQueueEntry(ctx, domain.QueueEntry{
			RespawnID:     respawnID,
			UserID:        userID,
			CharacterID:   character.ID,
			CharacterName: character.Name,
			JoinedAt:      st.now,
		})
		if err != nil {
			return err
		}
		st.queue = append(st.queue, *entry)
		domain.OrderQueue(st.queue)
		position := domain.PositionOf(st.queue, userID)
		st.emit(event.NewQueueEvent(event.QueueJoined, *entry, st.respawn.Code, position, event.SourceUser))

		if err := st.handoff(ctx); err != nil {
			return err
		}

		result = &JoinResult{Entry: st.queue[st.queueIndex(userID)], Position: position}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info(LogMsgQueueJoined, "respawn_id", respawnID, "user_id", userID, "position", result.Position)
	return result, nil
}

// LeaveQueue removes the caller from the respawn queue
func (s *service) LeaveQueue(ctx context.Context, userID string, respawnID int64) error {
	log := logger.FromContext(ctx)

	err := s.withRespawn(ctx, respawnID, event.SourceUser, func(st *respawnState) error {
		idx := st.queueIndex(userID)
		if idx < 0 {
			return domain.ErrNotInQueue
		}
		if err := st.removeEntry(ctx, idx, event.SourceUser); err != nil {
			return err
		}
		if err := st.settle(ctx); err != nil {
			return err
		}
		return st.handoff(ctx)
	})
	if err != nil {
		return err
	}

	log.Info(LogMsgQueueLeft, "respawn_id", respawnID, "user_id", userID)
	return nil
}

// GetUserState returns the caller's active claims and queue entries with positions
func (s *service) GetUserState(ctx context.Context, userID string) (*UserState, error) {
	claims, err := s.repo.ListUserClaims(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgLoadUserState, err)
	}
	entries, err := s.repo.ListUserQueueEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgLoadUserState, err)
	}

	state := &UserState{
		Claims:       make([]domain.Claim, 0, len(claims)),
		QueueEntries: make([]UserQueueEntry, 0, len(entries)),
	}
	now := s.now()
	for _, c := range claims {
		if c.IsLive(now) {
			state.Claims = append(state.Claims, c)
		}
	}
	for _, e := range entries {
		queue, err := s.repo.ListQueue(ctx, e.RespawnID)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgLoadUserState, err)
		}
		domain.OrderQueue(queue)
		state.QueueEntries = append(state.QueueEntries, UserQueueEntry{
			QueueEntry: e,
			Position:   domain.PositionOf(queue, userID),
		})
	}
	return state, nil
}

// ClaimSettings returns the claim timings currently in force
func (s *service) ClaimSettings(ctx context.Context) domain.ClaimSettings {
	return s.settings.ClaimSettings(ctx)
}

// UpdateClaimSettings stores new claim timings.
// Claims already granted keep their expiry.
func (s *service) UpdateClaimSettings(ctx context.Context, settings domain.ClaimSettings) error {
	return s.settings.UpdateClaimSettings(ctx, settings)
}

// withRespawn runs fn inside a transaction holding the respawn lock, commits,
// then publishes the events and notifications fn produced
func (s *service) withRespawn(ctx context.Context, respawnID int64, source string, fn func(st *respawnState) error) error {
	_, err := s.withRespawnReport(ctx, respawnID, source, fn)
	return err
}

func (s *service) withRespawnReport(ctx context.Context, respawnID int64, source string, fn func(st *respawnState) error) (SweepReport, error) {
	tx, err := s.repo.BeginCoordinationTx(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf(ErrMsgBeginTxFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.LockRespawn(ctx, respawnID); err != nil {
		return SweepReport{}, fmt.Errorf(ErrMsgLockFailed, respawnID, err)
	}

	st, err := s.loadState(ctx, tx, respawnID, source)
	if err != nil {
		return SweepReport{}, err
	}
	if err := fn(st); err != nil {
		return SweepReport{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return SweepReport{}, fmt.Errorf(ErrMsgCommitFailed, err)
	}

	s.publish(ctx, st)
	return st.report, nil
}

func (s *service) loadState(ctx context.Context, tx repository.CoordinationTx, respawnID int64, source string) (*respawnState, error) {
	respawn, err := tx.GetRespawn(ctx, respawnID)
	if err != nil {
		if errors.Is(err, domain.ErrRespawnNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf(ErrMsgLoadStateFailed, respawnID, err)
	}
	active, err := tx.GetActiveClaim(ctx, respawnID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgLoadStateFailed, respawnID, err)
	}
	queue, err := tx.ListQueue(ctx, respawnID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgLoadStateFailed, respawnID, err)
	}
	domain.OrderQueue(queue)

	return &respawnState{
		tx:       tx,
		respawn:  respawn,
		active:   active,
		queue:    queue,
		now:      s.now(),
		settings: s.settings.ClaimSettings(ctx),
		source:   source,
	}, nil
}

// publish runs after commit; a lost event never undoes a committed change
func (s *service) publish(ctx context.Context, st *respawnState) {
	log := logger.FromContext(ctx)
	for _, evt := range st.events {
		if err := s.bus.Publish(ctx, evt); err != nil {
			log.Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
		}
	}
	for _, n := range st.notifications {
		if err := s.bus.Publish(ctx, event.NewNotificationCreatedEvent(n)); err != nil {
			log.Warn(LogMsgPublishFailed, "type", event.NotificationCreated, "error", err)
		}
	}
}
