package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RespawnQueue_Go/internal/clientsync"
	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

type MockCommands struct {
	mock.Mock
	view *clientsync.View
}

func (m *MockCommands) View() *clientsync.View { return m.view }

func (m *MockCommands) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCommands) Claim(ctx context.Context, respawnID, characterID int64) error {
	return m.Called(ctx, respawnID, characterID).Error(0)
}

func (m *MockCommands) Release(ctx context.Context, claimID int64) error {
	return m.Called(ctx, claimID).Error(0)
}

func (m *MockCommands) Join(ctx context.Context, respawnID, characterID int64) (int, error) {
	args := m.Called(ctx, respawnID, characterID)
	return args.Int(0), args.Error(1)
}

func (m *MockCommands) Leave(ctx context.Context, respawnID int64) error {
	return m.Called(ctx, respawnID).Error(0)
}

func newMockCommands() *MockCommands {
	view := clientsync.NewView()
	view.Replace([]domain.RespawnOverview{
		{Respawn: domain.Respawn{ID: 7, Code: "X7", Name: "Hero Cave"}, State: domain.RespawnStateClaimed,
			ActiveClaim: &domain.Claim{ID: 5, RespawnID: 7, CharacterName: "Knight Alice"}, QueueLength: 2},
	}, coordinator.UserState{
		QueueEntries: []coordinator.UserQueueEntry{{QueueEntry: domain.QueueEntry{RespawnID: 7}, Position: 2}},
	}, time.Now())
	return &MockCommands{view: view}
}

func TestConsole_Commands(t *testing.T) {
	ctx := context.Background()
	cmds := newMockCommands()
	cmds.On("Claim", mock.Anything, int64(7), int64(11)).Return(nil)
	cmds.On("Release", mock.Anything, int64(5)).Return(&clientsync.RPCError{Op: "release_claim", Message: "claim is not yours"})
	cmds.On("Join", mock.Anything, int64(7), int64(11)).Return(3, nil)
	cmds.On("Leave", mock.Anything, int64(7)).Return(nil)

	var out bytes.Buffer
	in := strings.NewReader("list\nclaim 7 11\nrelease 5\njoin 7 11\nleave 7\nstate\nclaim x 1\nbogus\nquit\nlist\n")
	err := newConsole(cmds, in, &out).Run(ctx)
	assert.True(t, errors.Is(err, errQuit))

	got := out.String()
	assert.Contains(t, got, "X7")
	assert.Contains(t, got, "Knight Alice")
	assert.Contains(t, got, "claimed respawn 7")
	assert.Contains(t, got, "error: release_claim: claim is not yours")
	assert.Contains(t, got, "joined queue for respawn 7 at position 3")
	assert.Contains(t, got, "left queue for respawn 7")
	assert.Contains(t, got, "queued for respawn 7 at position 2")
	assert.Contains(t, got, `error: invalid id "x"`)
	assert.Contains(t, got, `unknown command "bogus"`)
	assert.Equal(t, 1, strings.Count(got, "Hero Cave"), "nothing runs after quit")
	cmds.AssertExpectations(t)
}

func TestConsole_EndOfInput(t *testing.T) {
	cmds := newMockCommands()
	cmds.On("Refresh", mock.Anything).Return(nil)

	var out bytes.Buffer
	require.NoError(t, newConsole(cmds, strings.NewReader("refresh\n\n"), &out).Run(context.Background()))
	cmds.AssertCalled(t, "Refresh", mock.Anything)
}
