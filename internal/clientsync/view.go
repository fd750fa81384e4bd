package clientsync

import (
	"sync"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// View is the local copy of respawns and the user's own claims and queue
// entries. Optimistic projections are always replaced by the next refresh.
type View struct {
	mu       sync.RWMutex
	userID   string
	respawns map[int64]domain.RespawnOverview
	order    []int64
	state    coordinator.UserState
	loadedAt time.Time
}

// Snapshot is a pre-mutation copy of the view, replayed on rollback
type Snapshot struct {
	respawns map[int64]domain.RespawnOverview
	order    []int64
	state    coordinator.UserState
	loadedAt time.Time
}

// NewView creates an empty view
func NewView() *View {
	return &View{respawns: make(map[int64]domain.RespawnOverview)}
}

// SetUserID records whose claims the view tracks
func (v *View) SetUserID(userID string) {
	v.mu.Lock()
	v.userID = userID
	v.mu.Unlock()
}

// Replace installs server truth
func (v *View) Replace(overview []domain.RespawnOverview, state coordinator.UserState, at time.Time) {
	respawns := make(map[int64]domain.RespawnOverview, len(overview))
	order := make([]int64, 0, len(overview))
	for _, r := range overview {
		respawns[r.ID] = r
		order = append(order, r.ID)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.respawns = respawns
	v.order = order
	v.state = copyState(state)
	v.loadedAt = at
}

// Respawns returns the respawns in server order
func (v *View) Respawns() []domain.RespawnOverview {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.RespawnOverview, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.respawns[id])
	}
	return out
}

// Respawn returns one respawn
func (v *View) Respawn(id int64) (domain.RespawnOverview, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	r, ok := v.respawns[id]
	return r, ok
}

// State returns the user's claims and queue entries
func (v *View) State() coordinator.UserState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return copyState(v.state)
}

// LoadedAt is when server truth was last installed
func (v *View) LoadedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loadedAt
}

// Snapshot captures the current view
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	respawns := make(map[int64]domain.RespawnOverview, len(v.respawns))
	for id, r := range v.respawns {
		respawns[id] = r
	}
	return Snapshot{
		respawns: respawns,
		order:    append([]int64(nil), v.order...),
		state:    copyState(v.state),
		loadedAt: v.loadedAt,
	}
}

// Restore replays a snapshot
func (v *View) Restore(s Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.respawns = s.respawns
	v.order = s.order
	v.state = s.state
	v.loadedAt = s.loadedAt
}

// applyClaim projects a successful claim
func (v *View) applyClaim(respawnID, characterID int64, now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	claim := domain.Claim{
		RespawnID:   respawnID,
		UserID:      v.userID,
		CharacterID: characterID,
		ClaimedAt:   now,
		IsActive:    true,
	}
	if r, ok := v.respawns[respawnID]; ok {
		c := claim
		r.ActiveClaim = &c
		r.State = domain.RespawnStateClaimed
		if r.PriorityHolder != nil && r.PriorityHolder.UserID == v.userID {
			// Claiming consumes the priority entry
			r.PriorityHolder = nil
			r.QueueLength = max(r.QueueLength-1, 0)
		}
		v.respawns[respawnID] = r
	}
	v.state.Claims = append(v.state.Claims, claim)
	v.removeOwnEntry(respawnID)
}

// applyRelease projects a release and reports whether the claim was known
func (v *View) applyRelease(claimID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := -1
	for i, c := range v.state.Claims {
		if c.ID == claimID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	respawnID := v.state.Claims[idx].RespawnID
	v.state.Claims = append(v.state.Claims[:idx:idx], v.state.Claims[idx+1:]...)

	if r, ok := v.respawns[respawnID]; ok {
		r.ActiveClaim = nil
		r.State = domain.RespawnStateFree
		if r.QueueLength > 0 {
			r.State = domain.RespawnStateReserved
		}
		v.respawns[respawnID] = r
	}
	return true
}

// applyJoin projects a queue join at the back of the line
func (v *View) applyJoin(respawnID, characterID int64, now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	position := 1
	if r, ok := v.respawns[respawnID]; ok {
		r.QueueLength++
		position = r.QueueLength
		v.respawns[respawnID] = r
	}
	v.state.QueueEntries = append(v.state.QueueEntries, coordinator.UserQueueEntry{
		QueueEntry: domain.QueueEntry{
			RespawnID:   respawnID,
			UserID:      v.userID,
			CharacterID: characterID,
			JoinedAt:    now,
		},
		Position: position,
	})
}

// applyLeave projects leaving a queue
func (v *View) applyLeave(respawnID int64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.removeOwnEntry(respawnID) {
		return
	}
	if r, ok := v.respawns[respawnID]; ok {
		r.QueueLength = max(r.QueueLength-1, 0)
		if r.PriorityHolder != nil && r.PriorityHolder.UserID == v.userID {
			r.PriorityHolder = nil
			if r.ActiveClaim == nil {
				r.State = domain.RespawnStateFree
			}
		}
		v.respawns[respawnID] = r
	}
}

// removeOwnEntry drops the user's entry for respawnID; the lock must be held
func (v *View) removeOwnEntry(respawnID int64) bool {
	for i, e := range v.state.QueueEntries {
		if e.RespawnID == respawnID {
			v.state.QueueEntries = append(v.state.QueueEntries[:i:i], v.state.QueueEntries[i+1:]...)
			return true
		}
	}
	return false
}

func copyState(s coordinator.UserState) coordinator.UserState {
	return coordinator.UserState{
		Claims:       append([]domain.Claim(nil), s.Claims...),
		QueueEntries: append([]coordinator.UserQueueEntry(nil), s.QueueEntries...),
	}
}
