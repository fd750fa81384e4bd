package clientsync

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// FeedEvent is one row change received from the change feed
type FeedEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Table     string          `json:"table"`
	Op        string          `json:"op"`
	UserID    string          `json:"user_id,omitempty"`
	RespawnID int64           `json:"respawn_id,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// FeedHandler receives change events, including the connected event sent
// after every (re)connect
type FeedHandler func(ctx context.Context, evt FeedEvent)

// FeedClient keeps a change feed stream open, reconnecting with exponential backoff
type FeedClient struct {
	api        *APIClient
	tables     []string
	handler    FeedHandler
	httpClient *http.Client

	mu        sync.RWMutex
	connected bool
}

// NewFeedClient creates a feed client scoped to tables; empty means every table
func NewFeedClient(api *APIClient, tables []string, handler FeedHandler) *FeedClient {
	return &FeedClient{
		api:     api,
		tables:  tables,
		handler: handler,
		// No timeout for the stream itself
		httpClient: &http.Client{},
	}
}

// IsConnected reports whether a stream is currently open
func (c *FeedClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *FeedClient) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// Run streams until ctx is done. It returns nil on cancellation.
func (c *FeedClient) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	backoff := feedInitialBackoff
	failures := 0

	for {
		if ctx.Err() != nil {
			log.Info(LogMsgFeedStopped)
			return nil
		}

		started := time.Now()
		err := c.connect(ctx)
		c.setConnected(false)
		if ctx.Err() != nil {
			log.Info(LogMsgFeedStopped)
			return nil
		}

		// A stream that stayed up for a while resets the backoff
		if time.Since(started) > feedMaxBackoff {
			backoff = feedInitialBackoff
			failures = 0
		}
		failures++
		log.Warn(LogMsgFeedFailed, "error", err, "backoff", backoff, "consecutive_failures", failures)

		select {
		case <-time.After(backoff):
			backoff = time.Duration(float64(backoff) * feedBackoffMultiplier)
			if backoff > feedMaxBackoff {
				backoff = feedMaxBackoff
			}
		case <-ctx.Done():
			log.Info(LogMsgFeedStopped)
			return nil
		}
	}
}

func (c *FeedClient) connect(ctx context.Context) error {
	req, err := c.api.feedRequest(ctx, c.tables)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	c.setConnected(true)
	logger.FromContext(ctx).Info(LogMsgFeedConnected, "url", req.URL.Path, "tables", c.tables)

	return c.readEvents(ctx, resp.Body)
}

// readEvents parses the event stream until it ends
func (c *FeedClient) readEvents(ctx context.Context, body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, feedBufferSize), feedBufferSize)

	var eventID, eventType, data string
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Text()
		switch {
		case line == "":
			if data != "" {
				c.dispatch(ctx, eventID, eventType, data)
			}
			eventID, eventType, data = "", "", ""
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "id: "):
			eventID = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream: %w", err)
	}
	return errors.New(ErrMsgStreamClosed)
}

func (c *FeedClient) dispatch(ctx context.Context, id, eventType, data string) {
	if eventType == feedEventKeepalive {
		return
	}

	var evt FeedEvent
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgFeedParseError, "error", err, "data", data)
		return
	}
	if eventType != "" {
		evt.Type = eventType
	}
	if id != "" {
		evt.ID = id
	}
	c.handler(ctx, evt)
}
