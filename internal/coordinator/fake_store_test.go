package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

// memStore is an in-memory Coordination store.
// LockRespawn holds a per-respawn mutex until commit or rollback, and
// rollback undoes every write made through the transaction.
type memStore struct {
	mu            sync.Mutex
	locks         map[int64]*sync.Mutex
	respawns      map[int64]domain.Respawn
	members       map[string]domain.Member
	characters    map[int64]domain.Character
	claims        map[int64]domain.Claim
	entries       map[int64]domain.QueueEntry
	notifications []domain.Notification
	settings      map[string]string
	nextID        int64

	// failures injected by tests
	failCommit      error
	failGetSettings error
}

func newMemStore() *memStore {
	return &memStore{
		locks:      make(map[int64]*sync.Mutex),
		respawns:   make(map[int64]domain.Respawn),
		members:    make(map[string]domain.Member),
		characters: make(map[int64]domain.Character),
		claims:     make(map[int64]domain.Claim),
		entries:    make(map[int64]domain.QueueEntry),
		settings:   make(map[string]string),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// Fixtures

func (m *memStore) addRespawn(code, name string) domain.Respawn {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := domain.Respawn{ID: m.id(), Code: code, Name: name, City: "Thais"}
	m.respawns[r.ID] = r
	return r
}

func (m *memStore) addMember(userID string, tier domain.RoleTier) domain.Character {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[userID] = domain.Member{UserID: userID, Username: userID, RoleTier: tier}
	c := domain.Character{ID: m.id(), UserID: userID, Name: userID + " Knight", World: "Antica"}
	m.characters[c.ID] = c
	return c
}

func (m *memStore) claim(id int64) domain.Claim {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims[id]
}

func (m *memStore) activeClaims(respawnID int64) []domain.Claim {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Claim
	for _, c := range m.claims {
		if c.RespawnID == respawnID && c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

func (m *memStore) queueFor(respawnID int64) []domain.QueueEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queueLocked(respawnID)
}

func (m *memStore) queueLocked(respawnID int64) []domain.QueueEntry {
	out := []domain.QueueEntry{}
	for _, e := range m.entries {
		if e.RespawnID == respawnID {
			out = append(out, e)
		}
	}
	domain.OrderQueue(out)
	return out
}

func (m *memStore) notificationsFor(userID string, typ domain.NotificationType) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (m *memStore) respawnLock(respawnID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[respawnID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[respawnID] = l
	}
	return l
}

// repository.Coordination

func (m *memStore) BeginCoordinationTx(ctx context.Context) (repository.CoordinationTx, error) {
	return &memTx{store: m}, nil
}

func (m *memStore) GetActiveClaim(ctx context.Context, respawnID int64) (*domain.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeClaimLocked(respawnID), nil
}

func (m *memStore) activeClaimLocked(respawnID int64) *domain.Claim {
	for _, c := range m.claims {
		if c.RespawnID == respawnID && c.IsActive {
			cp := c
			return &cp
		}
	}
	return nil
}

func (m *memStore) ListActiveClaims(ctx context.Context) ([]domain.Claim, error) {
	return m.filterClaims(func(c domain.Claim) bool { return c.IsActive }), nil
}

func (m *memStore) ListUserClaims(ctx context.Context, userID string) ([]domain.Claim, error) {
	return m.filterClaims(func(c domain.Claim) bool { return c.IsActive && c.UserID == userID }), nil
}

func (m *memStore) filterClaims(keep func(domain.Claim) bool) []domain.Claim {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Claim
	for _, c := range m.claims {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m *memStore) ListQueue(ctx context.Context, respawnID int64) ([]domain.QueueEntry, error) {
	return m.queueFor(respawnID), nil
}

func (m *memStore) ListAllQueueEntries(ctx context.Context) ([]domain.QueueEntry, error) {
	return m.filterEntries(func(domain.QueueEntry) bool { return true }), nil
}

func (m *memStore) ListUserQueueEntries(ctx context.Context, userID string) ([]domain.QueueEntry, error) {
	return m.filterEntries(func(e domain.QueueEntry) bool { return e.UserID == userID }), nil
}

func (m *memStore) filterEntries(keep func(domain.QueueEntry) bool) []domain.QueueEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.QueueEntry
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	domain.OrderQueue(out)
	return out
}

func (m *memStore) ListOverdueClaims(ctx context.Context, now time.Time) ([]domain.Claim, error) {
	return m.filterClaims(func(c domain.Claim) bool { return c.IsOverdue(now) }), nil
}

func (m *memStore) ListLapsedPriorities(ctx context.Context, now time.Time) ([]domain.QueueEntry, error) {
	return m.filterEntries(func(e domain.QueueEntry) bool { return e.PriorityLapsed(now) }), nil
}

func (m *memStore) ListStalledRespawns(ctx context.Context, now time.Time) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for id := range m.respawns {
		queue := m.queueLocked(id)
		if len(queue) == 0 {
			continue
		}
		if domain.DeriveState(m.activeClaimLocked(id), queue, now) == domain.RespawnStateFree {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memStore) ListClaimsNearExpiry(ctx context.Context, now, deadline time.Time) ([]domain.Claim, error) {
	return m.filterClaims(func(c domain.Claim) bool {
		return c.IsActive && c.ExpiringNotifiedAt == nil && c.ExpiresAt.After(now) && !c.ExpiresAt.After(deadline)
	}), nil
}

// repository.Settings

func (m *memStore) GetSettings(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGetSettings != nil {
		return nil, m.failGetSettings
	}
	out := make(map[string]string, len(m.settings))
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) UpsertSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// memTx writes straight into the store and records undo steps
type memTx struct {
	store  *memStore
	locked []*sync.Mutex
	undo   []func()
	done   bool
}

var errTxDone = errors.New(domain.ErrMsgTxClosed)

func (t *memTx) finish() {
	t.done = true
	for i := len(t.locked) - 1; i >= 0; i-- {
		t.locked[i].Unlock()
	}
	t.locked = nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.store.mu.Lock()
	fail := t.store.failCommit
	t.store.mu.Unlock()
	if fail != nil {
		return fail
	}
	t.undo = nil
	t.finish()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()
	t.undo = nil
	t.finish()
	return nil
}

func (t *memTx) LockRespawn(ctx context.Context, respawnID int64) error {
	l := t.store.respawnLock(respawnID)
	l.Lock()
	t.locked = append(t.locked, l)
	return nil
}

func (t *memTx) GetRespawn(ctx context.Context, respawnID int64) (*domain.Respawn, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	r, ok := t.store.respawns[respawnID]
	if !ok {
		return nil, domain.ErrRespawnNotFound
	}
	return &r, nil
}

func (t *memTx) GetMember(ctx context.Context, userID string) (*domain.Member, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	m, ok := t.store.members[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &m, nil
}

func (t *memTx) GetCharacter(ctx context.Context, characterID int64) (*domain.Character, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	c, ok := t.store.characters[characterID]
	if !ok {
		return nil, domain.ErrCharacterNotFound
	}
	return &c, nil
}

func (t *memTx) GetActiveClaim(ctx context.Context, respawnID int64) (*domain.Claim, error) {
	return t.store.GetActiveClaim(ctx, respawnID)
}

func (t *memTx) GetClaim(ctx context.Context, claimID int64) (*domain.Claim, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	c, ok := t.store.claims[claimID]
	if !ok {
		return nil, domain.ErrClaimNotFound
	}
	return &c, nil
}

func (t *memTx) InsertClaim(ctx context.Context, c domain.Claim) (*domain.Claim, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.activeClaimLocked(c.RespawnID) != nil {
		return nil, domain.ErrRespawnAlreadyClaimed
	}
	c.ID = t.store.id()
	c.IsActive = true
	t.store.claims[c.ID] = c
	t.undo = append(t.undo, func() { delete(t.store.claims, c.ID) })
	return &c, nil
}

func (t *memTx) DeactivateClaim(ctx context.Context, claimID int64, at time.Time, reason string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	prev, ok := t.store.claims[claimID]
	if !ok || !prev.IsActive {
		return domain.ErrClaimNotActive
	}
	next := prev
	next.IsActive = false
	next.ReleasedAt = &at
	next.EndReason = reason
	t.store.claims[claimID] = next
	t.undo = append(t.undo, func() { t.store.claims[claimID] = prev })
	return nil
}

func (t *memTx) MarkExpiringNotified(ctx context.Context, claimID int64, at time.Time) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	prev := t.store.claims[claimID]
	next := prev
	next.ExpiringNotifiedAt = &at
	t.store.claims[claimID] = next
	t.undo = append(t.undo, func() { t.store.claims[claimID] = prev })
	return nil
}

func (t *memTx) ListQueue(ctx context.Context, respawnID int64) ([]domain.QueueEntry, error) {
	return t.store.queueFor(respawnID), nil
}

func (t *memTx) InsertQueueEntry(ctx context.Context, e domain.QueueEntry) (*domain.QueueEntry, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, existing := range t.store.entries {
		if existing.RespawnID == e.RespawnID && existing.UserID == e.UserID {
			return nil, domain.ErrAlreadyInQueue
		}
	}
	e.ID = t.store.id()
	t.store.entries[e.ID] = e
	t.undo = append(t.undo, func() { delete(t.store.entries, e.ID) })
	return &e, nil
}

func (t *memTx) DeleteQueueEntry(ctx context.Context, entryID int64) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	prev, ok := t.store.entries[entryID]
	if !ok {
		return domain.ErrNotInQueue
	}
	delete(t.store.entries, entryID)
	t.undo = append(t.undo, func() { t.store.entries[entryID] = prev })
	return nil
}

func (t *memTx) GrantPriority(ctx context.Context, entryID int64, givenAt, expiresAt time.Time) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	prev := t.store.entries[entryID]
	next := prev
	next.PriorityGivenAt = &givenAt
	next.PriorityExpiresAt = &expiresAt
	t.store.entries[entryID] = next
	t.undo = append(t.undo, func() { t.store.entries[entryID] = prev })
	return nil
}

func (t *memTx) InsertNotification(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	n.ID = t.store.id()
	n.CreatedAt = time.Now()
	t.store.notifications = append(t.store.notifications, n)
	t.undo = append(t.undo, func() {
		for i, existing := range t.store.notifications {
			if existing.ID == n.ID {
				t.store.notifications = append(t.store.notifications[:i], t.store.notifications[i+1:]...)
				return
			}
		}
	})
	return &n, nil
}

// fakeClock is a settable time source shared by concurrent callers
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
