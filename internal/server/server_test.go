package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RespawnQueue_Go/internal/auth"
	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/respawn"
	"github.com/osse101/RespawnQueue_Go/internal/sse"
)

const testAPIKey = "test-api-key"

type stubPool struct{}

func (stubPool) Ping(context.Context) error { return nil }
func (stubPool) Close()                     {}

type stubRespawns struct {
	respawn.Service
}

func (stubRespawns) Overview(context.Context) ([]domain.RespawnOverview, error) {
	return []domain.RespawnOverview{{Respawn: domain.Respawn{ID: 2, Code: "X2"}, State: domain.RespawnStateFree}}, nil
}

type stubCoordinator struct {
	coordinator.Service
}

func (stubCoordinator) ClaimSettings(context.Context) domain.ClaimSettings {
	return domain.DefaultClaimSettings()
}

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager("router-test-secret", 0)
	require.NoError(t, err)

	hub := sse.NewHub()
	hub.Start()
	t.Cleanup(hub.Stop)

	return NewRouter(Config{APIKey: testAPIKey}, Dependencies{
		DB:          stubPool{},
		Coordinator: stubCoordinator{},
		Respawns:    stubRespawns{},
		Tokens:      tokens,
		Hub:         hub,
		Bus:         event.NewMemoryBus(),
	}), tokens
}

func bearer(t *testing.T, tokens *auth.TokenManager, member domain.Member) string {
	t.Helper()
	token, _, err := tokens.Issue(member)
	require.NoError(t, err)
	return auth.BearerPrefix + token
}

func TestRouter_AuthLayers(t *testing.T) {
	router, tokens := newTestRouter(t)
	member := bearer(t, tokens, domain.Member{UserID: "u1", Username: "Alice"})
	admin := bearer(t, tokens, domain.Member{UserID: "u2", Username: "Boss", IsAdmin: true})

	tests := []struct {
		name       string
		method     string
		path       string
		apiKey     string
		token      string
		wantStatus int
	}{
		{"liveness is public", http.MethodGet, "/healthz", "", "", http.StatusOK},
		{"readiness is public", http.MethodGet, "/readyz", "", "", http.StatusOK},
		{"api needs key", http.MethodGet, "/api/v1/respawns", "", member, http.StatusUnauthorized},
		{"api needs token", http.MethodGet, "/api/v1/respawns", testAPIKey, "", http.StatusUnauthorized},
		{"member reads overview", http.MethodGet, "/api/v1/respawns", testAPIKey, member, http.StatusOK},
		{"member cannot reach admin", http.MethodGet, "/api/v1/admin/settings", testAPIKey, member, http.StatusForbidden},
		{"admin reads settings", http.MethodGet, "/api/v1/admin/settings", testAPIKey, admin, http.StatusOK},
		{"admin feed stats", http.MethodGet, "/api/v1/admin/feed/stats", testAPIKey, admin, http.StatusOK},
		{"garbage token", http.MethodGet, "/api/v1/respawns", testAPIKey, auth.BearerPrefix + "not-a-jwt", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/v1/nothing-here", testAPIKey, member, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.apiKey != "" {
				req.Header.Set(HeaderAPIKey, tt.apiKey)
			}
			if tt.token != "" {
				req.Header.Set(HeaderAuthorization, tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouter_OverviewBody(t *testing.T) {
	router, tokens := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/respawns", nil)
	req.Header.Set(HeaderAPIKey, testAPIKey)
	req.Header.Set(HeaderAuthorization, bearer(t, tokens, domain.Member{UserID: "u1"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"X2"`)
	assert.Equal(t, HeaderValueNoSniff, rec.Header().Get(HeaderContentType))
}
