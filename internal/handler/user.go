package handler

import (
	"net/http"

	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/roster"
)

// UserHandler serves the caller's own member record, characters and claim state
type UserHandler struct {
	roster roster.Service
	coord  coordinator.Service
}

// NewUserHandler creates a user handler
func NewUserHandler(rosterSvc roster.Service, coord coordinator.Service) *UserHandler {
	return &UserHandler{roster: rosterSvc, coord: coord}
}

// HandleMe returns the caller's member record
// @Summary Current member
// @Tags me
// @Produce json
// @Success 200 {object} domain.Member
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /me [get]
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	member, err := h.roster.GetMember(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "get member", err)
		return
	}
	respondJSON(w, http.StatusOK, member)
}

// HandleState returns the caller's active claims and queue entries
// @Summary Claims and queue entries
// @Tags me
// @Produce json
// @Success 200 {object} coordinator.UserState
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /me/claims [get]
func (h *UserHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	state, err := h.coord.GetUserState(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "user state", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// HandleListCharacters lists the caller's characters
// @Summary List characters
// @Tags me
// @Produce json
// @Success 200 {array} domain.Character
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /me/characters [get]
func (h *UserHandler) HandleListCharacters(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chars, err := h.roster.ListCharacters(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "list characters", err)
		return
	}
	respondJSON(w, http.StatusOK, chars)
}

// HandleAddCharacter registers a character for the caller
// @Summary Add character
// @Tags me
// @Accept json
// @Produce json
// @Param request body roster.AddCharacterRequest true "Character"
// @Success 201 {object} domain.Character
// @Failure 400 {object} ValidationErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /me/characters [post]
func (h *UserHandler) HandleAddCharacter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req roster.AddCharacterRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Add character"); err != nil {
		return
	}
	char, err := h.roster.AddCharacter(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, "add character", err)
		return
	}
	respondJSON(w, http.StatusCreated, char)
}
