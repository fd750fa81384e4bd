package clientsync

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Dedup remembers notification ids for a time window so that one
// notification arriving over both the feed and the poll alerts once
type Dedup struct {
	mu   sync.Mutex
	seen *expirable.LRU[int64, struct{}]
}

// NewDedup creates a dedup set. A non-positive window uses DefaultDedupWindow.
func NewDedup(window time.Duration) *Dedup {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Dedup{
		seen: expirable.NewLRU[int64, struct{}](DedupCapacity, nil, window),
	}
}

// FirstSeen records id and reports whether it was new
func (d *Dedup) FirstSeen(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen.Contains(id) {
		return false
	}
	d.seen.Add(id, struct{}{})
	return true
}

// Len is the number of ids currently remembered
func (d *Dedup) Len() int {
	return d.seen.Len()
}
