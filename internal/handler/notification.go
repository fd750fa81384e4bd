package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/notification"
)

const defaultNotificationLimit = 50

// UnreadCountResponse feeds the tray badge
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// NotificationHandler serves the caller's notifications
type NotificationHandler struct {
	svc notification.Service
}

// NewNotificationHandler creates a notification handler
func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// HandleList lists notifications newer than the since watermark
// @Summary List notifications
// @Description Oldest first. Clients poll with since set to the newest created_at they hold.
// @Tags notifications
// @Produce json
// @Param since query string false "RFC 3339 watermark"
// @Param unread query bool false "Only unread"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} domain.Notification
// @Failure 400 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	since, err := parseTimeQuery(r, "since")
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, "since"))
		return
	}
	limit, err := parseIntQuery(r, "limit", defaultNotificationLimit)
	if err != nil || limit <= 0 {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, "limit"))
		return
	}
	unread, err := strconv.ParseBool(GetOptionalQueryParam(r, "unread", "false"))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, "unread"))
		return
	}

	list, err := h.svc.List(r.Context(), domain.NotificationFilter{
		UserID:     userID,
		Since:      since,
		UnreadOnly: unread,
		Limit:      limit,
	})
	if err != nil {
		respondServiceError(w, r, "list notifications", err)
		return
	}
	if list == nil {
		list = []domain.Notification{}
	}
	respondJSON(w, http.StatusOK, list)
}

// HandleUnreadCount returns the number of unread notifications
// @Summary Unread count
// @Tags notifications
// @Produce json
// @Success 200 {object} UnreadCountResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /notifications/unread_count [get]
func (h *NotificationHandler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	count, err := h.svc.UnreadCount(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "unread count", err)
		return
	}
	respondJSON(w, http.StatusOK, UnreadCountResponse{Count: count})
}

// HandleMarkRead marks one notification read
// @Summary Mark read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, "mark read", err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgNotificationRead})
}

// HandleMarkAllRead marks every unread notification read
// @Summary Mark all read
// @Tags notifications
// @Produce json
// @Success 200 {object} MarkAllReadResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /notifications/read_all [post]
func (h *NotificationHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	updated, err := h.svc.MarkAllRead(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, "mark all read", err)
		return
	}
	respondJSON(w, http.StatusOK, MarkAllReadResponse{Updated: updated})
}
