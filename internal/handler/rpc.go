package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// RPC operation names, used for logging and routing
const (
	RPCClaimRespawn = "claim_respawn"
	RPCReleaseClaim = "release_claim"
	RPCJoinQueue    = "join_respawn_queue"
	RPCLeaveQueue   = "leave_respawn_queue"
)

// RPCResponse is the envelope every coordinator RPC answers with.
// Domain failures are success=false with HTTP 200.
type RPCResponse struct {
	Success  bool               `json:"success"`
	Error    string             `json:"error,omitempty"`
	Claim    *domain.Claim      `json:"claim,omitempty"`
	Entry    *domain.QueueEntry `json:"entry,omitempty"`
	Position int                `json:"position,omitempty"`
}

// ClaimRespawnRequest is the body of claim_respawn and join_respawn_queue
type ClaimRespawnRequest struct {
	RespawnID   int64 `json:"p_respawn_id" validate:"required,gt=0"`
	CharacterID int64 `json:"p_character_id" validate:"required,gt=0"`
}

// ReleaseClaimRequest is the body of release_claim
type ReleaseClaimRequest struct {
	ClaimID int64 `json:"p_claim_id" validate:"required,gt=0"`
}

// LeaveQueueRequest is the body of leave_respawn_queue
type LeaveQueueRequest struct {
	RespawnID int64 `json:"p_respawn_id" validate:"required,gt=0"`
}

// CoordinatorHandler exposes the claim and queue operations as RPC endpoints
type CoordinatorHandler struct {
	coord coordinator.Service
}

// NewCoordinatorHandler creates the RPC handler
func NewCoordinatorHandler(coord coordinator.Service) *CoordinatorHandler {
	return &CoordinatorHandler{coord: coord}
}

// HandleClaimRespawn claims a free respawn for one of the caller's characters
// @Summary Claim a respawn
// @Tags rpc
// @Accept json
// @Produce json
// @Param request body ClaimRespawnRequest true "Respawn and character"
// @Success 200 {object} RPCResponse
// @Failure 400 {object} RPCResponse
// @Failure 500 {object} RPCResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /rpc/claim_respawn [post]
func (h *CoordinatorHandler) HandleClaimRespawn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireRPCUser(w, r)
	if !ok {
		return
	}
	var req ClaimRespawnRequest
	if !decodeRPC(w, r, &req, RPCClaimRespawn) {
		return
	}

	claim, err := h.coord.ClaimRespawn(r.Context(), userID, req.RespawnID, req.CharacterID)
	if err != nil {
		respondRPCError(w, r, RPCClaimRespawn, err)
		return
	}
	respondJSON(w, http.StatusOK, RPCResponse{Success: true, Claim: claim})
}

// HandleReleaseClaim ends the caller's claim and hands the respawn to the queue
// @Summary Release a claim
// @Tags rpc
// @Accept json
// @Produce json
// @Param request body ReleaseClaimRequest true "Claim to release"
// @Success 200 {object} RPCResponse
// @Failure 400 {object} RPCResponse
// @Failure 500 {object} RPCResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /rpc/release_claim [post]
func (h *CoordinatorHandler) HandleReleaseClaim(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireRPCUser(w, r)
	if !ok {
		return
	}
	var req ReleaseClaimRequest
	if !decodeRPC(w, r, &req, RPCReleaseClaim) {
		return
	}

	if err := h.coord.ReleaseClaim(r.Context(), userID, req.ClaimID); err != nil {
		respondRPCError(w, r, RPCReleaseClaim, err)
		return
	}
	respondJSON(w, http.StatusOK, RPCResponse{Success: true})
}

// HandleJoinQueue appends the caller to a respawn's wait queue
// @Summary Join a respawn queue
// @Tags rpc
// @Accept json
// @Produce json
// @Param request body ClaimRespawnRequest true "Respawn and character"
// @Success 200 {object} RPCResponse
// @Failure 400 {object} RPCResponse
// @Failure 500 {object} RPCResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /rpc/join_respawn_queue [post]
func (h *CoordinatorHandler) HandleJoinQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireRPCUser(w, r)
	if !ok {
		return
	}
	var req ClaimRespawnRequest
	if !decodeRPC(w, r, &req, RPCJoinQueue) {
		return
	}

	res, err := h.coord.JoinQueue(r.Context(), userID, req.RespawnID, req.CharacterID)
	if err != nil {
		respondRPCError(w, r, RPCJoinQueue, err)
		return
	}
	entry := res.Entry
	respondJSON(w, http.StatusOK, RPCResponse{Success: true, Entry: &entry, Position: res.Position})
}

// HandleLeaveQueue removes the caller from a respawn's wait queue
// @Summary Leave a respawn queue
// @Tags rpc
// @Accept json
// @Produce json
// @Param request body LeaveQueueRequest true "Respawn"
// @Success 200 {object} RPCResponse
// @Failure 400 {object} RPCResponse
// @Failure 500 {object} RPCResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /rpc/leave_respawn_queue [post]
func (h *CoordinatorHandler) HandleLeaveQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireRPCUser(w, r)
	if !ok {
		return
	}
	var req LeaveQueueRequest
	if !decodeRPC(w, r, &req, RPCLeaveQueue) {
		return
	}

	if err := h.coord.LeaveQueue(r.Context(), userID, req.RespawnID); err != nil {
		respondRPCError(w, r, RPCLeaveQueue, err)
		return
	}
	respondJSON(w, http.StatusOK, RPCResponse{Success: true})
}

func requireRPCUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := requireUserID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, RPCResponse{Error: domain.ErrMsgUnauthenticated})
	}
	return userID, ok
}

// decodeRPC decodes and validates an RPC body, answering 400 in the RPC envelope
func decodeRPC(w http.ResponseWriter, r *http.Request, req interface{}, op string) bool {
	log := logger.FromContext(r.Context())
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Warn(LogMsgDecodeFailed, "operation", op, "error", err)
		respondJSON(w, http.StatusBadRequest, RPCResponse{Error: ErrMsgInvalidRequest})
		return false
	}
	if err := GetValidator().ValidateStruct(req); err != nil {
		log.Warn(LogMsgDecodeFailed, "operation", op, "error", err)
		respondJSON(w, http.StatusBadRequest, RPCResponse{Error: ErrMsgInvalidRequestSummary})
		return false
	}
	return true
}

// respondRPCError answers domain failures with 200 and the domain message,
// and infrastructure failures with a generic 5xx
func respondRPCError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := logger.FromContext(r.Context())
	if domain.IsDomainError(err) {
		log.Info(LogMsgRPCDomainError, "operation", op, "error", err)
		respondJSON(w, http.StatusOK, RPCResponse{Error: domainMessage(err)})
		return
	}
	if errors.Is(err, domain.ErrUnauthenticated) {
		respondJSON(w, http.StatusUnauthorized, RPCResponse{Error: domain.ErrMsgUnauthenticated})
		return
	}

	log.Error(LogMsgRPCFailed, "operation", op, "error", err)
	status, msg := mapServiceErrorToUserMessage(err)
	if status < http.StatusInternalServerError {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, RPCResponse{Error: msg})
}
