package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

type contextKey struct{}

// WithIdentity stores the caller on ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, contextKey{}, id)
	return logger.WithUserID(ctx, id.UserID)
}

// FromContext returns the caller stored by the middleware
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// UserID returns the caller's user id or "" when unauthenticated
func UserID(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.UserID
}

// Middleware requires a valid bearer token and stores the identity on the request context
func (m *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			http.Error(w, domain.ErrMsgUnauthenticated, http.StatusUnauthorized)
			return
		}
		id, err := m.Verify(token)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgTokenRejected, "path", r.URL.Path, "error", err)
			http.Error(w, domain.ErrMsgUnauthenticated, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin rejects callers whose token does not carry the admin flag
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, domain.ErrMsgUnauthenticated, http.StatusUnauthorized)
			return
		}
		if !id.IsAdmin {
			http.Error(w, domain.ErrMsgForbidden, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(HeaderAuthorization); strings.HasPrefix(h, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, BearerPrefix))
	}
	return r.URL.Query().Get(QueryParamToken)
}
