package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *eventRecorder) handle(_ context.Context, evt event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *eventRecorder) count(t event.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, evt := range r.events {
		if evt.Type == t {
			n++
		}
	}
	return n
}

type harness struct {
	store  *memStore
	clock  *fakeClock
	svc    *service
	events *eventRecorder
	x2     domain.Respawn
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newMemStore()
	clock := newFakeClock()
	bus := event.NewMemoryBus()
	rec := &eventRecorder{}
	event.SubscribeAll(bus, rec.handle,
		event.ClaimCreated, event.ClaimReleased, event.ClaimExpired,
		event.QueueJoined, event.QueueLeft, event.PriorityGranted, event.PriorityLapsed,
		event.NotificationCreated, event.HousekeepingCompleted)

	cache := NewSettingsCache(store, domain.DefaultClaimSettings(), time.Minute)
	svc := NewService(store, cache, bus, 10*time.Minute, nil).(*service)
	svc.now = clock.Now

	return &harness{
		store:  store,
		clock:  clock,
		svc:    svc,
		events: rec,
		x2:     store.addRespawn("X2", "Asura Palace"),
	}
}

func TestClaimRespawn_DurationByTier(t *testing.T) {
	tests := []struct {
		name string
		tier domain.RoleTier
		want time.Duration
	}{
		{"guild", domain.RoleTierGuild, 150 * time.Minute},
		{"neutro", domain.RoleTierNeutro, 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			char := h.store.addMember("alice", tt.tier)

			claim, err := h.svc.ClaimRespawn(context.Background(), "alice", h.x2.ID, char.ID)
			require.NoError(t, err)

			assert.True(t, claim.IsActive)
			assert.Equal(t, char.Name, claim.CharacterName)
			assert.Equal(t, h.clock.Now().Add(tt.want), claim.ExpiresAt)
			assert.Equal(t, 1, h.events.count(event.ClaimCreated))
		})
	}
}

func TestClaimRespawn_Rejections(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)
	bob := h.store.addMember("bob", domain.RoleTierGuild)

	_, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrCharacterNotOwned)

	_, err = h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, 9999)
	assert.ErrorIs(t, err, domain.ErrCharacterNotFound)

	_, err = h.svc.ClaimRespawn(ctx, "alice", 9999, alice.ID)
	assert.ErrorIs(t, err, domain.ErrRespawnNotFound)

	_, err = h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)

	_, err = h.svc.ClaimRespawn(ctx, "bob", h.x2.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrRespawnAlreadyClaimed)

	_, err = h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyHoldClaim)

	assert.Len(t, h.store.activeClaims(h.x2.ID), 1)
}

func TestClaimRespawn_OverdueClaimIsReplaced(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierNeutro)
	bob := h.store.addMember("bob", domain.RoleTierGuild)

	first, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)

	h.clock.Advance(91 * time.Minute)

	second, err := h.svc.ClaimRespawn(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)

	old := h.store.claim(first.ID)
	assert.False(t, old.IsActive)
	assert.Equal(t, domain.ClaimEndReasonExpired, old.EndReason)
	assert.Equal(t, "bob", second.UserID)
	assert.Equal(t, 1, h.events.count(event.ClaimExpired))
}

func TestClaimRespawn_OverdueClaimQueuedCallerGetsNoClaimReady(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierNeutro)
	bob := h.store.addMember("bob", domain.RoleTierGuild)

	_, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)

	h.clock.Advance(91 * time.Minute)

	claim, err := h.svc.ClaimRespawn(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", claim.UserID)
	assert.Empty(t, h.store.notificationsFor("bob", domain.NotificationClaimReady))
	assert.Zero(t, h.events.count(event.PriorityGranted))
}

func TestClaimRespawn_OverdueClaimHandsOffAheadOfCaller(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierNeutro)
	bob := h.store.addMember("bob", domain.RoleTierGuild)
	carol := h.store.addMember("carol", domain.RoleTierGuild)

	_, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, "carol", h.x2.ID, carol.ID)
	require.NoError(t, err)

	h.clock.Advance(91 * time.Minute)

	_, err = h.svc.ClaimRespawn(ctx, "carol", h.x2.ID, carol.ID)
	assert.ErrorIs(t, err, domain.ErrPriorityReserved, "bob is ahead of carol")

	claim, err := h.svc.ClaimRespawn(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", claim.UserID)
	assert.Empty(t, h.store.notificationsFor("carol", domain.NotificationClaimReady))
}

// A claims X2, B joins, A releases, B gets a claim_ready window and claims
func TestScenario_ReleaseHandsPriorityToQueue(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)
	bob := h.store.addMember("bob", domain.RoleTierNeutro)
	carol := h.store.addMember("carol", domain.RoleTierGuild)

	claim, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, h.clock.Now().Add(150*time.Minute), claim.ExpiresAt)

	joined, err := h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, joined.Position)
	assert.Nil(t, joined.Entry.PriorityExpiresAt, "claimed respawn grants no priority on join")

	h.clock.Advance(30 * time.Minute)
	require.NoError(t, h.svc.ReleaseClaim(ctx, "alice", claim.ID))

	released := h.store.claim(claim.ID)
	assert.False(t, released.IsActive)
	assert.Equal(t, domain.ClaimEndReasonReleased, released.EndReason)

	queue := h.store.queueFor(h.x2.ID)
	require.Len(t, queue, 1)
	require.NotNil(t, queue[0].PriorityExpiresAt)
	assert.Equal(t, h.clock.Now().Add(5*time.Minute), *queue[0].PriorityExpiresAt)
	assert.Equal(t, domain.RespawnStateReserved, domain.DeriveState(nil, queue, h.clock.Now()))

	ready := h.store.notificationsFor("bob", domain.NotificationClaimReady)
	require.Len(t, ready, 1)
	assert.Equal(t, h.x2.ID, *ready[0].RespawnID)

	_, err = h.svc.ClaimRespawn(ctx, "carol", h.x2.ID, carol.ID)
	assert.ErrorIs(t, err, domain.ErrPriorityReserved)

	h.clock.Advance(2 * time.Minute)
	bobClaim, err := h.svc.ClaimRespawn(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, h.clock.Now().Add(90*time.Minute), bobClaim.ExpiresAt)
	assert.Empty(t, h.store.queueFor(h.x2.ID), "priority is consumed by the claim")
	assert.Equal(t, 1, h.events.count(event.PriorityGranted))
}

// A claims X2, B joins, A releases, B never claims and the sweep frees the respawn
func TestScenario_UnusedPriorityLapses(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)
	bob := h.store.addMember("bob", domain.RoleTierGuild)

	claim, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, h.svc.ReleaseClaim(ctx, "alice", claim.ID))

	h.clock.Advance(6 * time.Minute)

	report, err := h.svc.CleanupExpiredPriorities(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{LapsedPriorities: 1}, report)

	assert.Empty(t, h.store.queueFor(h.x2.ID))
	assert.Empty(t, h.store.activeClaims(h.x2.ID))
	assert.Len(t, h.store.notificationsFor("bob", domain.NotificationQueueUpdate), 1)

	again, err := h.svc.CleanupExpiredPriorities(ctx)
	require.NoError(t, err)
	assert.True(t, again.Empty())
}

func TestCleanupExpiredPriorities_PassesToNextOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)
	bob := h.store.addMember("bob", domain.RoleTierGuild)
	carol := h.store.addMember("carol", domain.RoleTierGuild)

	claim, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	_, err = h.svc.JoinQueue(ctx, "carol", h.x2.ID, carol.ID)
	require.NoError(t, err)

	require.NoError(t, h.svc.ReleaseClaim(ctx, "alice", claim.ID))
	assert.Len(t, h.store.notificationsFor("bob", domain.NotificationClaimReady), 1)

	h.clock.Advance(5 * time.Minute)

	report, err := h.svc.CleanupExpiredPriorities(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{LapsedPriorities: 1, PrioritiesGranted: 1}, report)

	queue := h.store.queueFor(h.x2.ID)
	require.Len(t, queue, 1)
	assert.Equal(t, "carol", queue[0].UserID)
	assert.True(t, queue[0].HasPriority(h.clock.Now()))

	for i := 0; i < 3; i++ {
		again, err := h.svc.Sweep(ctx)
		require.NoError(t, err)
		assert.True(t, again.Empty())
	}
	assert.Len(t, h.store.notificationsFor("carol", domain.NotificationClaimReady), 1)
}

func TestCleanupExpiredPriorities_GrantsStalledQueue(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	bob := h.store.addMember("bob", domain.RoleTierGuild)

	// A waiter left behind on a free respawn, e.g. after a crash between commits
	h.store.entries[500] = domain.QueueEntry{
		ID: 500, RespawnID: h.x2.ID, UserID: "bob", CharacterID: bob.ID, JoinedAt: h.clock.Now(),
	}

	report, err := h.svc.CleanupExpiredPriorities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PrioritiesGranted)
	assert.Len(t, h.store.notificationsFor("bob", domain.NotificationClaimReady), 1)
}

func TestJoinQueue_Positions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)
	_, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)

	users := []string{"bob", "carol", "dave"}
	for i, u := range users {
		char := h.store.addMember(u, domain.RoleTierNeutro)
		res, err := h.svc.JoinQueue(ctx, u, h.x2.ID, char.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, res.Position, "position for %s", u)
	}

	require.NoError(t, h.svc.LeaveQueue(ctx, "carol", h.x2.ID))

	state, err := h.svc.GetUserState(ctx, "dave")
	require.NoError(t, err)
	require.Len(t, state.QueueEntries, 1)
	assert.Equal(t, 2, state.QueueEntries[0].Position)

	aliceState, err := h.svc.GetUserState(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, aliceState.Claims, 1)
	assert.Empty(t, aliceState.QueueEntries)
}

func TestJoinQueue_Rejections(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)
	bob := h.store.addMember("bob", domain.RoleTierGuild)

	_, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)

	_, err = h.svc.JoinQueue(ctx, "alice", h.x2.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyHoldClaim)

	_, err = h.svc.JoinQueue(ctx, "bob", h.x2.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrCharacterNotOwned)

	_, err = h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)

	_, err = h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyInQueue)

	assert.Len(t, h.store.queueFor(h.x2.ID), 1)
}

func TestJoinQueue_FreeRespawnGrantsPriority(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	bob := h.store.addMember("bob", domain.RoleTierGuild)

	res, err := h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Position)
	require.NotNil(t, res.Entry.PriorityExpiresAt)
	assert.True(t, res.Entry.HasPriority(h.clock.Now()))
	assert.Len(t, h.store.notificationsFor("bob", domain.NotificationClaimReady), 1)
}

func TestLeaveQueue(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	bob := h.store.addMember("bob", domain.RoleTierGuild)
	carol := h.store.addMember("carol", domain.RoleTierGuild)

	assert.ErrorIs(t, h.svc.LeaveQueue(ctx, "bob", h.x2.ID), domain.ErrNotInQueue)

	// Bob holds priority on the free respawn; leaving passes it to Carol
	_, err := h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, "carol", h.x2.ID, carol.ID)
	require.NoError(t, err)

	require.NoError(t, h.svc.LeaveQueue(ctx, "bob", h.x2.ID))
	assert.ErrorIs(t, h.svc.LeaveQueue(ctx, "bob", h.x2.ID), domain.ErrNotInQueue)

	queue := h.store.queueFor(h.x2.ID)
	require.Len(t, queue, 1)
	assert.True(t, queue[0].HasPriority(h.clock.Now()))
	assert.Len(t, h.store.notificationsFor("carol", domain.NotificationClaimReady), 1)
}

func TestReleaseClaim_Rejections(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)
	h.store.addMember("bob", domain.RoleTierGuild)

	claim, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.ReleaseClaim(ctx, "alice", 9999), domain.ErrClaimNotFound)
	assert.ErrorIs(t, h.svc.ReleaseClaim(ctx, "bob", claim.ID), domain.ErrNotClaimOwner)

	require.NoError(t, h.svc.ReleaseClaim(ctx, "alice", claim.ID))
	assert.ErrorIs(t, h.svc.ReleaseClaim(ctx, "alice", claim.ID), domain.ErrClaimNotActive)
}

func TestHandleExpiredClaims(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)
	bob := h.store.addMember("bob", domain.RoleTierGuild)

	claim, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)
	_, err = h.svc.JoinQueue(ctx, "bob", h.x2.ID, bob.ID)
	require.NoError(t, err)

	h.clock.Advance(151 * time.Minute)

	report, err := h.svc.HandleExpiredClaims(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{ExpiredClaims: 1, PrioritiesGranted: 1}, report)

	expired := h.store.claim(claim.ID)
	assert.False(t, expired.IsActive)
	assert.Equal(t, domain.ClaimEndReasonExpired, expired.EndReason)
	assert.Len(t, h.store.notificationsFor("bob", domain.NotificationClaimReady), 1)

	again, err := h.svc.HandleExpiredClaims(ctx)
	require.NoError(t, err)
	assert.True(t, again.Empty())
}

func TestWarnExpiringClaims_OncePerClaim(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)

	_, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)

	report, err := h.svc.WarnExpiringClaims(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.ExpiringWarnings, "claim is far from expiry")

	h.clock.Advance(141 * time.Minute)

	report, err = h.svc.WarnExpiringClaims(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ExpiringWarnings)

	report, err = h.svc.WarnExpiringClaims(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.ExpiringWarnings)

	warnings := h.store.notificationsFor("alice", domain.NotificationClaimExpiring)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "X2")
}

type fakePurger struct {
	purged int64
	err    error
}

func (p *fakePurger) Purge(context.Context) (int64, error) {
	return p.purged, p.err
}

func TestRunHousekeeping(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.svc.purger = &fakePurger{purged: 3}

	report, err := h.svc.RunHousekeeping(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.PurgedNotifications)
	assert.Equal(t, h.clock.Now(), report.RanAt)
	assert.Equal(t, 1, h.events.count(event.HousekeepingCompleted))

	h.svc.purger = &fakePurger{err: errors.New("disk full")}
	_, err = h.svc.RunHousekeeping(ctx)
	assert.ErrorContains(t, err, "disk full")
}

func TestClaimRespawn_CommitFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	alice := h.store.addMember("alice", domain.RoleTierGuild)
	bob := h.store.addMember("bob", domain.RoleTierGuild)

	_, err := h.svc.JoinQueue(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)
	notifications := len(h.store.notifications)

	h.store.failCommit = errors.New("connection reset")
	_, err = h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.Error(t, err)
	assert.False(t, domain.IsDomainError(err))

	assert.Empty(t, h.store.activeClaims(h.x2.ID))
	assert.Len(t, h.store.queueFor(h.x2.ID), 1, "queue entry restored")
	assert.Len(t, h.store.notifications, notifications)
	assert.Zero(t, h.events.count(event.ClaimCreated), "no events for rolled back work")

	h.store.failCommit = nil
	_, err = h.svc.ClaimRespawn(ctx, "bob", h.x2.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrPriorityReserved)
}

func TestClaimRespawn_ConcurrentExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	const racers = 25
	chars := make([]domain.Character, racers)
	for i := range chars {
		chars[i] = h.store.addMember(fmt.Sprintf("user-%d", i), domain.RoleTierGuild)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		losers  int
	)
	start := make(chan struct{})
	for i := range chars {
		wg.Add(1)
		go func(c domain.Character) {
			defer wg.Done()
			<-start
			_, err := h.svc.ClaimRespawn(ctx, c.UserID, h.x2.ID, c.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, domain.ErrRespawnAlreadyClaimed):
				losers++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(chars[i])
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, racers-1, losers)
	assert.Len(t, h.store.activeClaims(h.x2.ID), 1)
}

func TestJoinQueue_ConcurrentPositionsAreUnique(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	const joiners = 20
	chars := make([]domain.Character, joiners)
	for i := range chars {
		chars[i] = h.store.addMember(fmt.Sprintf("user-%d", i), domain.RoleTierNeutro)
	}

	positions := make(chan int, joiners)
	var wg sync.WaitGroup
	for i := range chars {
		wg.Add(1)
		go func(c domain.Character) {
			defer wg.Done()
			res, err := h.svc.JoinQueue(ctx, c.UserID, h.x2.ID, c.ID)
			if !assert.NoError(t, err) {
				return
			}
			positions <- res.Position
		}(chars[i])
	}
	wg.Wait()
	close(positions)

	seen := make(map[int]bool)
	for p := range positions {
		assert.False(t, seen[p], "duplicate position %d", p)
		seen[p] = true
	}
	assert.Len(t, seen, joiners)

	queue := h.store.queueFor(h.x2.ID)
	require.Len(t, queue, joiners)
	assert.True(t, queue[0].HasPriority(h.clock.Now()), "first joiner of a free respawn holds priority")
	assert.Nil(t, domain.NextInLine(queue[:1]))
}
