package auth

import "time"

// DefaultTokenTTL is used when no TTL is configured
const DefaultTokenTTL = 12 * time.Hour

// Issuer is stamped into every token
const Issuer = "respawnqueue"

// Header names
const (
	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "
	// QueryParamToken carries the token for EventSource and WebSocket clients that cannot set headers
	QueryParamToken = "access_token"
)

// Log messages
const (
	LogMsgTokenIssued   = "Issued user token"
	LogMsgTokenRejected = "Rejected user token"
)

// Error messages
const (
	ErrMsgMissingSecret  = "jwt secret is required"
	ErrMsgMissingSubject = "token has no subject"
	ErrMsgSignFailed     = "failed to sign token: %w"
)
