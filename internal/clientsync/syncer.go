package clientsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// Options configures a Syncer
type Options struct {
	PollInterval time.Duration
	DedupWindow  time.Duration
	Sinks        []Sink

	// PollOverlap is how far each poll reaches behind its watermark; zero uses DefaultPollOverlap
	PollOverlap time.Duration
	// RefreshInterval reloads the whole view so dropped feed events heal; zero uses DefaultRefreshInterval
	RefreshInterval time.Duration

	// Visible reports whether the user is looking at the app; nil means always
	Visible func() bool
}

// Syncer keeps a View consistent with the server from two channels, the
// change feed and a notification poll, and routes notifications to alerts.
// Mutations are applied to the view optimistically and rolled back on failure.
type Syncer struct {
	api    *APIClient
	view   *View
	router *Router
	feed   *FeedClient
	poller *Poller
	now    func() time.Time

	refreshInterval time.Duration

	refreshMu sync.Mutex
}

// New creates a Syncer over api
func New(api *APIClient, opts Options) *Syncer {
	s := &Syncer{
		api:    api,
		view:   NewView(),
		router: NewRouter(NewDedup(opts.DedupWindow), opts.Visible, opts.Sinks...),
		now:    time.Now,
	}
	s.feed = NewFeedClient(api, []string{TableClaims, TableQueueEntries, TableNotifications}, s.handleFeedEvent)
	overlap := opts.PollOverlap
	if overlap <= 0 {
		overlap = DefaultPollOverlap
	}
	s.poller = NewPoller(api, opts.PollInterval, overlap, time.Time{}, s.handleNotification)
	s.refreshInterval = opts.RefreshInterval
	if s.refreshInterval <= 0 {
		s.refreshInterval = DefaultRefreshInterval
	}
	return s
}

// View returns the local view
func (s *Syncer) View() *View {
	return s.view
}

// FeedConnected reports whether the change feed stream is open
func (s *Syncer) FeedConnected() bool {
	return s.feed.IsConnected()
}

// Run loads the view and then runs the feed, the poller and a periodic
// refresh until ctx is done
func (s *Syncer) Run(ctx context.Context) error {
	me, err := s.api.Me(ctx)
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	s.view.SetUserID(me.UserID)

	// Only notifications created from now on raise alerts, by the server's clock
	start, ok := s.api.ServerTime()
	if !ok {
		start = s.now()
	}
	s.poller.Advance(start)
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgSyncStarted, "user_id", me.UserID, "respawns", len(s.view.Respawns()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.feed.Run(gctx) })
	g.Go(func() error { return s.poller.Run(gctx) })
	g.Go(func() error { return s.refreshLoop(gctx) })
	return g.Wait()
}

// refreshLoop reloads the view on refreshInterval. Failures are logged and
// retried on the next tick.
func (s *Syncer) refreshLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				logger.FromContext(ctx).Warn(LogMsgRefreshFailed, "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Refresh replaces the view with server truth. Respawns and the user's
// state are fetched concurrently.
func (s *Syncer) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var (
		overview []domain.RespawnOverview
		state    *coordinator.UserState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview, err = s.api.Overview(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		state, err = s.api.UserState(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.view.Replace(overview, *state, s.now())
	return nil
}

func (s *Syncer) handleFeedEvent(ctx context.Context, evt FeedEvent) {
	switch {
	case evt.Type == feedEventConnected:
		// Changes missed while disconnected
		s.refreshQuietly(ctx)
	case evt.Table == TableClaims || evt.Table == TableQueueEntries:
		s.refreshQuietly(ctx)
	case evt.Table == TableNotifications && evt.Type == domain.EventTypeNotificationCreated:
		var payload struct {
			Notification domain.Notification `json:"notification"`
		}
		if err := json.Unmarshal(evt.Payload, &payload); err != nil {
			logger.FromContext(ctx).Warn(LogMsgFeedParseError, "type", evt.Type, "error", err)
			return
		}
		s.handleNotification(ctx, payload.Notification)
	}
}

// handleNotification is the single idempotent entry point for both channels
func (s *Syncer) handleNotification(ctx context.Context, n domain.Notification) {
	s.router.Handle(ctx, n)
}

func (s *Syncer) refreshQuietly(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		logger.FromContext(ctx).Warn(LogMsgRefreshFailed, "error", err)
	}
}

// mutate applies a local projection, runs call, and either rolls the view
// back (failure) or refetches server truth (success)
func (s *Syncer) mutate(ctx context.Context, op string, apply func(), call func(context.Context) error) error {
	snapshot := s.view.Snapshot()
	apply()

	if err := call(ctx); err != nil {
		s.view.Restore(snapshot)
		logger.FromContext(ctx).Info(LogMsgMutationRolledBack, "op", op, "error", err)
		return err
	}

	s.refreshQuietly(ctx)
	return nil
}

// Claim claims a respawn for one of the user's characters
func (s *Syncer) Claim(ctx context.Context, respawnID, characterID int64) error {
	return s.mutate(ctx, RPCClaimRespawn,
		func() { s.view.applyClaim(respawnID, characterID, s.now()) },
		func(ctx context.Context) error {
			_, err := s.api.ClaimRespawn(ctx, respawnID, characterID)
			return err
		})
}

// Release ends one of the user's claims
func (s *Syncer) Release(ctx context.Context, claimID int64) error {
	if _, ok := s.findClaim(claimID); !ok {
		return fmt.Errorf(ErrMsgNoClaimInView, claimID)
	}
	return s.mutate(ctx, RPCReleaseClaim,
		func() { s.view.applyRelease(claimID) },
		func(ctx context.Context) error { return s.api.ReleaseClaim(ctx, claimID) })
}

// Join queues the user for a respawn and returns the server's position
func (s *Syncer) Join(ctx context.Context, respawnID, characterID int64) (int, error) {
	var position int
	err := s.mutate(ctx, RPCJoinQueue,
		func() { s.view.applyJoin(respawnID, characterID, s.now()) },
		func(ctx context.Context) error {
			_, pos, err := s.api.JoinQueue(ctx, respawnID, characterID)
			position = pos
			return err
		})
	return position, err
}

// Leave removes the user from a respawn queue
func (s *Syncer) Leave(ctx context.Context, respawnID int64) error {
	return s.mutate(ctx, RPCLeaveQueue,
		func() { s.view.applyLeave(respawnID) },
		func(ctx context.Context) error { return s.api.LeaveQueue(ctx, respawnID) })
}

func (s *Syncer) findClaim(claimID int64) (domain.Claim, bool) {
	for _, c := range s.view.State().Claims {
		if c.ID == claimID {
			return c, true
		}
	}
	return domain.Claim{}, false
}
