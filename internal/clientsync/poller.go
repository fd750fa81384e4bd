package clientsync

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// notificationSource lists notifications newer than a watermark
type notificationSource interface {
	Notifications(ctx context.Context, since time.Time, limit int) ([]domain.Notification, error)
}

// Poller fetches notifications newer than its watermark on a fixed interval.
// It backs up the change feed; duplicates are dropped by the handler.
//
// A row's created_at is stamped before its transaction commits, so a row can
// become visible after a newer one was already polled. Every poll therefore
// reaches back by overlap behind the watermark and skips ids it has handled.
type Poller struct {
	source   notificationSource
	interval time.Duration
	overlap  time.Duration
	handle   func(ctx context.Context, n domain.Notification)

	mu        sync.Mutex
	watermark time.Time
	seen      map[int64]time.Time // handled ids inside the overlap, by created_at
}

// NewPoller creates a poller starting at watermark. A non-positive interval
// uses DefaultPollInterval; a negative overlap uses DefaultPollOverlap.
func NewPoller(source notificationSource, interval, overlap time.Duration, watermark time.Time, handle func(context.Context, domain.Notification)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if overlap < 0 {
		overlap = DefaultPollOverlap
	}
	return &Poller{
		source:    source,
		interval:  interval,
		overlap:   overlap,
		handle:    handle,
		watermark: watermark,
		seen:      make(map[int64]time.Time),
	}
}

// Watermark is the created_at of the newest notification seen
func (p *Poller) Watermark() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watermark
}

// Advance moves the watermark forward; older values are ignored
func (p *Poller) Advance(t time.Time) {
	p.mu.Lock()
	if t.After(p.watermark) {
		p.watermark = t
	}
	p.mu.Unlock()
}

// Run polls until ctx is done
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
				logger.FromContext(ctx).Warn(LogMsgPollFailed, "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// PollOnce fetches from overlap behind the watermark and hands every row not
// handled before to the handler. Full pages are followed from the last row,
// up to maxPollPages. It returns the number handled.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	cursor := p.since()
	handled := 0
	for page := 0; page < maxPollPages; page++ {
		list, err := p.source.Notifications(ctx, cursor, DefaultPollLimit)
		if err != nil {
			return handled, err
		}
		for _, n := range list {
			if !p.markSeen(n) {
				continue
			}
			p.handle(ctx, n)
			p.Advance(n.CreatedAt)
			handled++
		}
		if len(list) < DefaultPollLimit {
			break
		}
		cursor = list[len(list)-1].CreatedAt
	}
	p.forgetBefore(p.since())
	return handled, nil
}

func (p *Poller) since() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watermark.IsZero() {
		return p.watermark
	}
	return p.watermark.Add(-p.overlap)
}

// markSeen records n and reports whether it was new
func (p *Poller) markSeen(n domain.Notification) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[n.ID]; ok {
		return false
	}
	p.seen[n.ID] = n.CreatedAt
	return true
}

// forgetBefore drops ids no future poll can return
func (p *Poller) forgetBefore(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, created := range p.seen {
		if !created.After(t) {
			delete(p.seen, id)
		}
	}
}
