package sse

import "time"

// Buffer sizes
const (
	// BroadcastBufferSize is the buffer size for the broadcast channel
	BroadcastBufferSize = 256

	// ClientEventBuffer is the buffer size for each client's event channel
	ClientEventBuffer = 64

	// ClientChannelBuffer is the buffer size for register/unregister channels
	ClientChannelBuffer = 16
)

// Connection settings
const (
	// KeepaliveInterval is how often to send keepalive pings
	KeepaliveInterval = 30 * time.Second

	// WriteTimeout is the timeout for writing to client connections
	WriteTimeout = 10 * time.Second

	// PongWait is how long a WebSocket peer may stay silent before it is dropped
	PongWait = 60 * time.Second

	// MaxInboundMessage caps frames read from WebSocket peers
	MaxInboundMessage = 512
)

// Query parameters
const (
	QueryParamTables = "tables"
	QueryParamTypes  = "types"
	QueryParamScope  = "scope"

	// ScopeMine restricts public tables to rows that belong to the caller
	ScopeMine = "mine"
)

// Event types that only exist on the stream
const (
	EventTypeConnected = "connected"
	EventTypeKeepalive = "keepalive"
)

// Log messages
const (
	LogMsgClientConnected    = "Change feed client connected"
	LogMsgClientDisconnected = "Change feed client disconnected"
	LogMsgEventBroadcast     = "Broadcasting change event"
	LogMsgEventDropped       = "Change feed buffer full, dropping event"
	LogMsgWriteError         = "Failed to write change event"
	LogMsgUpgradeFailed      = "WebSocket upgrade failed"
	LogMsgBridgeRegistered   = "Change feed bridge registered"
	LogMsgUnmappedEvent      = "Change feed ignoring event"
)

// Error messages
const (
	ErrMsgStreamingUnsupported = "streaming not supported"
)
