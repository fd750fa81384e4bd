package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Buffers grown past maxPooledBuffer are dropped instead of pooled
const maxPooledBuffer = 64 << 10

var encodeBuffers = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// respondJSON encodes payload before writing the header so an encode failure can still become a 500
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := encodeBuffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		if buf.Cap() <= maxPooledBuffer {
			encodeBuffers.Put(buf)
		}
	}()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs err and answers with the mapped status and message
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(LogMsgRequestFailed, "operation", opName, "error", err)
	} else {
		log.Info(LogMsgRequestFailed, "operation", opName, "error", err)
	}
	respondError(w, status, msg)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"
	ErrMsgTimeoutError       = "The request timed out. Please try again."
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and
// messages. Domain error texts are safe to show; anything else is hidden
// behind a generic message.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrMsgUnauthenticated
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrMsgForbidden

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCharacterNotFound),
		errors.Is(err, domain.ErrRespawnNotFound),
		errors.Is(err, domain.ErrClaimNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrFavoriteNotFound),
		errors.Is(err, domain.ErrNotInQueue):
		return http.StatusNotFound, domainMessage(err)

	case errors.Is(err, domain.ErrCharacterNotOwned),
		errors.Is(err, domain.ErrNotClaimOwner):
		return http.StatusForbidden, domainMessage(err)

	case errors.Is(err, domain.ErrMemberAlreadyExists),
		errors.Is(err, domain.ErrRespawnCodeTaken),
		errors.Is(err, domain.ErrRespawnHasActiveClaim),
		errors.Is(err, domain.ErrRespawnAlreadyClaimed),
		errors.Is(err, domain.ErrPriorityReserved),
		errors.Is(err, domain.ErrClaimNotActive),
		errors.Is(err, domain.ErrAlreadyInQueue),
		errors.Is(err, domain.ErrAlreadyHoldClaim):
		return http.StatusConflict, domainMessage(err)

	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidRoleTier):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, domain.ErrConnectionTimeout):
		return http.StatusServiceUnavailable, ErrMsgTimeoutError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// domainMessage returns the sentinel's own text, dropping any wrapped detail
func domainMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if domain.IsDomainError(e) && errors.Unwrap(e) == nil {
			return e.Error()
		}
	}
	return err.Error()
}
