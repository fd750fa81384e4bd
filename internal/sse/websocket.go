package sse

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// WebSocketHandler serves the same change feed over a WebSocket. Frames are
// the JSON encoding of Event. Inbound frames are read only to detect closes.
func WebSocketHandler(hub *Hub, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		opts := optionsFromRequest(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn(LogMsgUpgradeFailed, "error", err)
			return
		}

		client := hub.Register(opts)
		log.Info(LogMsgClientConnected, "client_id", client.ID, "transport", "websocket", "total_clients", hub.ClientCount())

		closed := make(chan struct{})
		go readPump(conn, closed)

		writePump(conn, client, opts, closed)

		hub.Unregister(client.ID)
		_ = conn.Close()
		log.Info(LogMsgClientDisconnected, "client_id", client.ID, "transport", "websocket")
	}
}

// readPump discards inbound frames and closes done when the peer goes away
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(MaxInboundMessage)
	_ = conn.SetReadDeadline(time.Now().Add(PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(PongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, client *Client, opts ClientOptions, closed <-chan struct{}) {
	ticker := time.NewTicker(pingInterval())
	defer ticker.Stop()

	if err := writeJSON(conn, connectedEvent(client, opts)); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return

		case evt, ok := <-client.EventChannel:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(WriteTimeout))
				return
			}
			if err := writeJSON(conn, evt); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(WriteTimeout)); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, evt Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return conn.WriteJSON(evt)
}

// pingInterval keeps pings comfortably inside the peer's read deadline
func pingInterval() time.Duration {
	return PongWait * 9 / 10
}

// originChecker allows same-origin requests, non-browser clients and the listed origins
func originChecker(allowed []string) func(*http.Request) bool {
	set := toSet(allowed)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] {
			return true
		}
		if set[origin] {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
