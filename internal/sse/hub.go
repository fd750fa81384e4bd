package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// Client represents a connected feed client
type Client struct {
	ID           string
	UserID       string
	EventChannel chan Event
	tables       map[string]bool
	types        map[string]bool
	ownOnly      bool
}

// wants reports whether evt is visible to and requested by the client
func (c *Client) wants(evt Event) bool {
	if evt.Private && evt.UserID != c.UserID {
		return false
	}
	if c.ownOnly && evt.UserID != "" && evt.UserID != c.UserID {
		return false
	}
	if c.tables != nil && !c.tables[evt.Table] {
		return false
	}
	if c.types != nil && !c.types[evt.Type] {
		return false
	}
	return true
}

// Hub manages feed client connections and event broadcasting
type Hub struct {
	clients    map[string]*Client
	broadcast  chan Event
	register   chan *Client
	unregister chan string
	mu         sync.RWMutex
	shutdown   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	now        func() time.Time
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan Event, BroadcastBufferSize),
		register:   make(chan *Client, ClientChannelBuffer),
		unregister: make(chan string, ClientChannelBuffer),
		shutdown:   make(chan struct{}),
		now:        time.Now,
	}
}

// Start starts the hub's broadcast loop
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.run()
}

// Stop gracefully shuts down the hub and closes every client channel
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.shutdown)
		h.wg.Wait()

		h.mu.Lock()
		for _, client := range h.clients {
			close(client.EventChannel)
		}
		h.clients = make(map[string]*Client)
		h.mu.Unlock()
	})
}

func (h *Hub) run() {
	defer h.wg.Done()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[clientID]; ok {
				close(client.EventChannel)
				delete(h.clients, clientID)
			}
			h.mu.Unlock()

		case evt := <-h.broadcast:
			h.deliver(evt)

		case <-h.shutdown:
			return
		}
	}
}

func (h *Hub) deliver(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.wants(evt) {
			continue
		}
		// Slow clients miss events; notifications return through the poll, other rows on the next refresh
		select {
		case client.EventChannel <- evt:
		default:
			logger.FromContext(context.Background()).Debug(LogMsgEventDropped, "client_id", client.ID, "type", evt.Type)
		}
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(opts ClientOptions) *Client {
	client := &Client{
		ID:           uuid.NewString(),
		UserID:       opts.UserID,
		EventChannel: make(chan Event, ClientEventBuffer),
		tables:       toSet(opts.Tables),
		types:        toSet(opts.Types),
		ownOnly:      opts.OwnOnly,
	}
	select {
	case h.register <- client:
	case <-h.shutdown:
		close(client.EventChannel)
	}
	return client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.shutdown:
	}
}

// Broadcast stamps evt and queues it for delivery
func (h *Hub) Broadcast(evt Event) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = h.now().UnixMilli()
	}
	select {
	case h.broadcast <- evt:
	default:
		logger.FromContext(context.Background()).Warn(LogMsgEventDropped, "type", evt.Type)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FormatSSEMessage formats an event for an event-stream response
func FormatSSEMessage(evt Event) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}

	msg := "id: " + evt.ID + "\n"
	msg += "event: " + evt.Type + "\n"
	msg += "data: " + string(data) + "\n\n"
	return []byte(msg), nil
}

func toSet(values []string) map[string]bool {
	var set map[string]bool
	for _, v := range values {
		if v == "" {
			continue
		}
		if set == nil {
			set = make(map[string]bool, len(values))
		}
		set[v] = true
	}
	return set
}
