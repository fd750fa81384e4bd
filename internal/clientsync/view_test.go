package clientsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

var viewNow = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func seededView() *View {
	v := NewView()
	v.SetUserID("alice")
	until := viewNow.Add(3 * time.Minute)
	v.Replace([]domain.RespawnOverview{
		{Respawn: domain.Respawn{ID: 1, Code: "X1"}, State: domain.RespawnStateFree},
		{
			Respawn:        domain.Respawn{ID: 2, Code: "X2"},
			State:          domain.RespawnStateReserved,
			PriorityHolder: &domain.QueueEntry{ID: 20, RespawnID: 2, UserID: "alice", PriorityExpiresAt: &until},
			QueueLength:    2,
		},
		{
			Respawn:     domain.Respawn{ID: 3, Code: "X3"},
			State:       domain.RespawnStateClaimed,
			ActiveClaim: &domain.Claim{ID: 30, RespawnID: 3, UserID: "alice", IsActive: true},
			QueueLength: 1,
		},
	}, coordinator.UserState{
		Claims: []domain.Claim{{ID: 30, RespawnID: 3, UserID: "alice", IsActive: true}},
		QueueEntries: []coordinator.UserQueueEntry{
			{QueueEntry: domain.QueueEntry{ID: 20, RespawnID: 2, UserID: "alice"}, Position: 1},
		},
	}, viewNow)
	return v
}

func TestView_ReplaceKeepsServerOrder(t *testing.T) {
	v := seededView()
	codes := []string{}
	for _, r := range v.Respawns() {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []string{"X1", "X2", "X3"}, codes)
	assert.Equal(t, viewNow, v.LoadedAt())

	_, ok := v.Respawn(99)
	assert.False(t, ok)
}

func TestView_ApplyClaimConsumesPriority(t *testing.T) {
	v := seededView()
	v.applyClaim(2, 11, viewNow)

	r, ok := v.Respawn(2)
	require.True(t, ok)
	assert.Equal(t, domain.RespawnStateClaimed, r.State)
	require.NotNil(t, r.ActiveClaim)
	assert.Equal(t, int64(11), r.ActiveClaim.CharacterID)
	assert.Nil(t, r.PriorityHolder)
	assert.Equal(t, 1, r.QueueLength)

	state := v.State()
	assert.Len(t, state.Claims, 2)
	assert.Empty(t, state.QueueEntries)
}

func TestView_ApplyReleaseAndJoinLeave(t *testing.T) {
	v := seededView()

	assert.False(t, v.applyRelease(404))
	require.True(t, v.applyRelease(30))
	r, _ := v.Respawn(3)
	assert.Equal(t, domain.RespawnStateReserved, r.State, "a waiting queue reserves the freed respawn")
	assert.Nil(t, r.ActiveClaim)
	assert.Empty(t, v.State().Claims)

	v.applyJoin(1, 11, viewNow)
	r, _ = v.Respawn(1)
	assert.Equal(t, 1, r.QueueLength)
	entries := v.State().QueueEntries
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[1].Position)

	v.applyLeave(2)
	r, _ = v.Respawn(2)
	assert.Nil(t, r.PriorityHolder)
	assert.Equal(t, domain.RespawnStateFree, r.State)
	assert.Equal(t, 1, r.QueueLength)

	// Leaving a queue the user is not in changes nothing
	v.applyLeave(3)
	r, _ = v.Respawn(3)
	assert.Equal(t, 1, r.QueueLength)
}

func TestView_SnapshotRestore(t *testing.T) {
	v := seededView()
	snap := v.Snapshot()

	v.applyClaim(1, 11, viewNow)
	v.applyLeave(2)
	r, _ := v.Respawn(1)
	require.Equal(t, domain.RespawnStateClaimed, r.State)

	v.Restore(snap)
	r, _ = v.Respawn(1)
	assert.Equal(t, domain.RespawnStateFree, r.State)
	assert.Len(t, v.State().Claims, 1)
	assert.Len(t, v.State().QueueEntries, 1)
	r, _ = v.Respawn(2)
	assert.NotNil(t, r.PriorityHolder)
}
