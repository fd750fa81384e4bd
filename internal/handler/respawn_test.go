package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

func TestRespawnHandler(t *testing.T) {
	svc := new(MockRespawnService)
	svc.On("Overview", mock.Anything).Return([]domain.RespawnOverview{
		{Respawn: domain.Respawn{ID: 2, Code: "X2"}, State: domain.RespawnStateClaimed, QueueLength: 1},
	}, nil)
	svc.On("GetRespawn", mock.Anything, int64(404)).Return(nil, domain.ErrRespawnNotFound)
	svc.On("Queue", mock.Anything, int64(2)).Return([]domain.QueueEntry{{ID: 5, UserID: "bob"}}, nil)
	svc.On("AddFavorite", mock.Anything, "alice", int64(2)).Return(&domain.Favorite{UserID: "alice", RespawnID: 2}, nil)
	svc.On("RemoveFavorite", mock.Anything, "alice", int64(2)).Return(domain.ErrFavoriteNotFound)
	h := NewRespawnHandler(svc)

	w := httptest.NewRecorder()
	h.HandleOverview(w, newRequest(http.MethodGet, "/", "", "alice"))
	require.Equal(t, http.StatusOK, w.Code)
	var overview []domain.RespawnOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, domain.RespawnStateClaimed, overview[0].State)

	w = httptest.NewRecorder()
	h.HandleGetRespawn(w, newRequest(http.MethodGet, "/", "", "alice", "id", "404"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.HandleQueue(w, newRequest(http.MethodGet, "/", "", "alice", "id", "2"))
	assert.Contains(t, w.Body.String(), `"user_id":"bob"`)

	w = httptest.NewRecorder()
	h.HandleAddFavorite(w, newRequest(http.MethodPut, "/", "", "alice", "id", "2"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.HandleRemoveFavorite(w, newRequest(http.MethodDelete, "/", "", "alice", "id", "2"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.HandleAddFavorite(w, newRequest(http.MethodPut, "/", "", "alice", "id", "0"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler(t *testing.T) {
	rosterSvc := new(MockRosterService)
	coord := new(MockCoordinatorService)
	rosterSvc.On("GetMember", mock.Anything, "alice").Return(&domain.Member{UserID: "alice", Username: "Alice", RoleTier: domain.RoleTierGuild}, nil)
	rosterSvc.On("ListCharacters", mock.Anything, "alice").Return([]domain.Character{{ID: 7, Name: "Alice Knight"}}, nil)
	coord.On("GetUserState", mock.Anything, "alice").Return(&coordinator.UserState{
		Claims:       []domain.Claim{{ID: 11, RespawnID: 2}},
		QueueEntries: []coordinator.UserQueueEntry{{QueueEntry: domain.QueueEntry{ID: 5, RespawnID: 3}, Position: 2}},
	}, nil)
	h := NewUserHandler(rosterSvc, coord)

	w := httptest.NewRecorder()
	h.HandleMe(w, newRequest(http.MethodGet, "/", "", "alice"))
	assert.Contains(t, w.Body.String(), `"role_tier":"guild"`)

	w = httptest.NewRecorder()
	h.HandleState(w, newRequest(http.MethodGet, "/", "", "alice"))
	require.Equal(t, http.StatusOK, w.Code)
	var state coordinator.UserState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.Len(t, state.QueueEntries, 1)
	assert.Equal(t, 2, state.QueueEntries[0].Position)

	w = httptest.NewRecorder()
	h.HandleListCharacters(w, newRequest(http.MethodGet, "/", "", "alice"))
	assert.Contains(t, w.Body.String(), "Alice Knight")

	w = httptest.NewRecorder()
	h.HandleAddCharacter(w, newRequest(http.MethodPost, "/", `{"name":"","world":"Antica"}`, "alice"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
