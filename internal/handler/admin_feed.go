package handler

import (
	"net/http"

	"github.com/osse101/RespawnQueue_Go/internal/sse"
)

// FeedStatsResponse reports change feed usage
type FeedStatsResponse struct {
	Clients int `json:"clients"`
}

// AdminFeedHandler handles change feed admin tasks
type AdminFeedHandler struct {
	hub *sse.Hub
}

// NewAdminFeedHandler creates a new admin feed handler
func NewAdminFeedHandler(hub *sse.Hub) *AdminFeedHandler {
	return &AdminFeedHandler{hub: hub}
}

// HandleStats returns the number of connected feed clients
// @Summary Change feed statistics
// @Tags admin
// @Produce json
// @Success 200 {object} FeedStatsResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/feed/stats [get]
func (h *AdminFeedHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, FeedStatsResponse{Clients: h.hub.ClientCount()})
}
