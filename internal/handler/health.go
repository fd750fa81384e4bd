package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/database"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

const readinessTimeout = 2 * time.Second

// Health states
const (
	HealthOK          = "ok"
	HealthUnavailable = "unavailable"
)

// FeedStats reports the live feed's connected clients
type FeedStats interface {
	ClientCount() int
}

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status      string            `json:"status"`
	Message     string            `json:"message,omitempty"`
	Checks      map[string]string `json:"checks,omitempty"`
	FeedClients *int              `json:"feed_clients,omitempty"`
}

// HandleHealthz answers as long as the process serves HTTP
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: HealthOK})
	}
}

// HandleReadyz reports whether the database answers, plus the feed's client count
// @Summary Readiness check
// @Description 503 while the database is unreachable
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func HandleReadyz(db database.Pool, feed FeedStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		resp := HealthResponse{Status: HealthOK, Checks: map[string]string{"database": HealthOK}}
		if feed != nil {
			n := feed.ClientCount()
			resp.FeedClients = &n
		}

		if err := db.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error(LogMsgReadinessFailed, "error", err)
			resp.Status = HealthUnavailable
			resp.Message = ErrMsgDatabaseUnavailable
			resp.Checks["database"] = HealthUnavailable
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		respondJSON(w, http.StatusOK, resp)
	}
}
