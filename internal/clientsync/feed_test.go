package clientsync

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStream = `event: connected
data: {"type":"connected","timestamp":1}

: comment line
event: keepalive
data: {"type":"keepalive","timestamp":2}

id: 17
event: claim.created
data: {"table":"claims","op":"INSERT","respawn_id":7,"payload":{"claim":{"id":5}}}

event: queue.joined
data: not json

`

type recordedEvents struct {
	mu     sync.Mutex
	events []FeedEvent
}

func (r *recordedEvents) handle(_ context.Context, evt FeedEvent) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestReadEvents_ParsesStream(t *testing.T) {
	rec := &recordedEvents{}
	c := NewFeedClient(nil, nil, rec.handle)

	err := c.readEvents(t.Context(), strings.NewReader(sampleStream))
	assert.EqualError(t, err, ErrMsgStreamClosed)

	require.Equal(t, []string{feedEventConnected, "claim.created"}, rec.types(), "keepalives and bad payloads are dropped")
	evt := rec.events[1]
	assert.Equal(t, "17", evt.ID)
	assert.Equal(t, TableClaims, evt.Table)
	assert.Equal(t, "INSERT", evt.Op)
	assert.Equal(t, int64(7), evt.RespawnID)
	assert.JSONEq(t, `{"claim":{"id":5}}`, string(evt.Payload))
}

func TestFeedClient_RunReconnects(t *testing.T) {
	var (
		mu    sync.Mutex
		conns int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "claims,queue_entries", r.URL.Query().Get("tables"))
		mu.Lock()
		conns++
		n := conns
		mu.Unlock()

		w.Header().Set(headerContentType, contentTypeStream)
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "event: connected\ndata: {\"timestamp\":%d}\n\n", n)
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	rec := &recordedEvents{}
	c := NewFeedClient(NewAPIClient(srv.URL, "", ""), []string{TableClaims, TableQueueEntries}, rec.handle)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// The first stream ends immediately, so a second connection follows the backoff
	require.Eventually(t, func() bool { return len(rec.types()) >= 2 }, 5*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("feed client did not stop")
	}
	assert.False(t, c.IsConnected())
}
