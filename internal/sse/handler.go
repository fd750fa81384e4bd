package sse

import (
	"net/http"
	"strings"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/auth"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// optionsFromRequest reads ?tables=, ?types= and ?scope=mine for the authenticated caller
func optionsFromRequest(r *http.Request) ClientOptions {
	q := r.URL.Query()
	return ClientOptions{
		UserID:  auth.UserID(r.Context()),
		Tables:  splitList(q.Get(QueryParamTables)),
		Types:   splitList(q.Get(QueryParamTypes)),
		OwnOnly: q.Get(QueryParamScope) == ScopeMine,
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func connectedEvent(client *Client, opts ClientOptions) Event {
	return Event{
		ID:        client.ID,
		Type:      EventTypeConnected,
		Table:     TableSystem,
		Timestamp: time.Now().UnixMilli(),
		Payload: map[string]interface{}{
			"client_id": client.ID,
			"tables":    opts.Tables,
			"types":     opts.Types,
		},
	}
}

// Handler returns an HTTP handler streaming the change feed as server-sent events
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, ErrMsgStreamingUnsupported, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ctx := r.Context()
		log := logger.FromContext(ctx)
		opts := optionsFromRequest(r)

		client := hub.Register(opts)
		log.Info(LogMsgClientConnected, "client_id", client.ID, "transport", "sse", "total_clients", hub.ClientCount())
		defer func() {
			hub.Unregister(client.ID)
			log.Info(LogMsgClientDisconnected, "client_id", client.ID, "transport", "sse")
		}()

		write := func(evt Event) bool {
			msg, err := FormatSSEMessage(evt)
			if err != nil {
				log.Error(LogMsgWriteError, "error", err)
				return true
			}
			if _, err := w.Write(msg); err != nil {
				log.Warn(LogMsgWriteError, "error", err)
				return false
			}
			flusher.Flush()
			return true
		}

		if !write(connectedEvent(client, opts)) {
			return
		}

		ticker := time.NewTicker(KeepaliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case evt, ok := <-client.EventChannel:
				if !ok {
					return
				}
				if !write(evt) {
					return
				}

			case <-ticker.C:
				if !write(Event{Type: EventTypeKeepalive, Table: TableSystem, Timestamp: time.Now().UnixMilli()}) {
					return
				}
			}
		}
	}
}
