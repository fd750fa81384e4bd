package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/auth"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/roster"
)

// IssueTokenRequest names the member to issue a token for
type IssueTokenRequest struct {
	UserID   string `json:"user_id" validate:"required_without=Username,max=64"`
	Username string `json:"username" validate:"required_without=UserID,max=64"`
}

// TokenResponse carries a signed user token
type TokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Member    domain.Member `json:"member"`
}

// AuthHandler issues user tokens to trusted API-key holders
type AuthHandler struct {
	roster roster.Service
	tokens *auth.TokenManager
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(rosterSvc roster.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{roster: rosterSvc, tokens: tokens}
}

// HandleIssueToken issues a token for a registered member
// @Summary Issue user token
// @Description Requires the service API key. Looks the member up by user_id, or by username when user_id is empty.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body IssueTokenRequest true "Member"
// @Success 200 {object} TokenResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/token [post]
func (h *AuthHandler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req IssueTokenRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Issue token"); err != nil {
		return
	}

	var (
		member *domain.Member
		err    error
	)
	if id := strings.TrimSpace(req.UserID); id != "" {
		member, err = h.roster.GetMember(r.Context(), id)
	} else {
		member, err = h.roster.GetMemberByUsername(r.Context(), strings.TrimSpace(req.Username))
	}
	if err != nil {
		respondServiceError(w, r, "issue token", err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(*member)
	if err != nil {
		respondServiceError(w, r, "issue token", err)
		return
	}

	logger.FromContext(r.Context()).Info(LogMsgTokenIssued, "user_id", member.UserID)
	respondJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expiresAt, Member: *member})
}
