package handler

import (
	"net/http"

	"github.com/osse101/RespawnQueue_Go/internal/respawn"
)

// RespawnHandler serves the respawn overview and the caller's favorites
type RespawnHandler struct {
	respawns respawn.Service
}

// NewRespawnHandler creates a respawn handler
func NewRespawnHandler(respawns respawn.Service) *RespawnHandler {
	return &RespawnHandler{respawns: respawns}
}

// HandleOverview lists every respawn with its derived state
// @Summary Respawn overview
// @Description Every respawn joined with its active claim, priority holder and queue length
// @Tags respawns
// @Produce json
// @Success 200 {array} domain.RespawnOverview
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /respawns [get]
func (h *RespawnHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.respawns.Overview(r.Context())
	if err != nil {
		respondServiceError(w, r, "respawn overview", err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// HandleGetRespawn returns one respawn
// @Summary Get a respawn
// @Tags respawns
// @Produce json
// @Param id path int true "Respawn ID"
// @Success 200 {object} domain.Respawn
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /respawns/{id} [get]
func (h *RespawnHandler) HandleGetRespawn(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}
	rsp, err := h.respawns.GetRespawn(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "get respawn", err)
		return
	}
	respondJSON(w, http.StatusOK, rsp)
}

// HandleQueue returns a respawn's waiters in wait order
// @Summary Respawn queue
// @Tags respawns
// @Produce json
// @Param id path int true "Respawn ID"
// @Success 200 {array} domain.QueueEntry
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /respawns/{id}/queue [get]
func (h *RespawnHandler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}
	queue, err := h.respawns.Queue(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "respawn queue", err)
		return
	}
	respondJSON(w, http.StatusOK, queue)
}

// HandleListFavorites lists the caller's favorite respawns
// @Summary List favorites
// @Tags favorites
// @Produce json
// @Success 200 {array} domain.Favorite
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /favorites [get]
func (h *RespawnHandler) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	favs, err := h.respawns.ListFavorites(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "list favorites", err)
		return
	}
	respondJSON(w, http.StatusOK, favs)
}

// HandleAddFavorite marks a respawn as a favorite
// @Summary Add favorite
// @Tags favorites
// @Produce json
// @Param id path int true "Respawn ID"
// @Success 200 {object} DataResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /favorites/{id} [put]
func (h *RespawnHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}
	fav, err := h.respawns.AddFavorite(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, r, "add favorite", err)
		return
	}
	respondJSON(w, http.StatusOK, DataResponse{Message: MsgFavoriteAdded, Data: fav})
}

// HandleRemoveFavorite unmarks a favorite respawn
// @Summary Remove favorite
// @Tags favorites
// @Produce json
// @Param id path int true "Respawn ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /favorites/{id} [delete]
func (h *RespawnHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.respawns.RemoveFavorite(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, "remove favorite", err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgFavoriteRemoved})
}
