package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
)

func TestEventMetricsCollector(t *testing.T) {
	ctx := context.Background()
	bus := event.NewMemoryBus()
	NewEventMetricsCollector().Register(bus)

	claimedAt := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	releasedAt := claimedAt.Add(time.Hour)
	claim := domain.Claim{ID: 1, RespawnID: 2, UserID: "u1", ClaimedAt: claimedAt, ExpiresAt: claimedAt.Add(150 * time.Minute), ReleasedAt: &releasedAt, EndReason: domain.ClaimEndReasonReleased}

	created := ClaimTransitions.WithLabelValues(transitionCreated, event.SourceUser)
	released := ClaimTransitions.WithLabelValues(transitionReleased, event.SourceUser)
	granted := QueueTransitions.WithLabelValues(transitionGranted, event.SourceHousekeeping)
	claimReady := NotificationsCreated.WithLabelValues(string(domain.NotificationClaimReady))
	expired := HousekeepingChanges.WithLabelValues(KindExpiredClaims)

	before := []float64{
		testutil.ToFloat64(created),
		testutil.ToFloat64(released),
		testutil.ToFloat64(granted),
		testutil.ToFloat64(claimReady),
		testutil.ToFloat64(expired),
		testutil.ToFloat64(HousekeepingRuns),
	}

	require.NoError(t, bus.Publish(ctx, event.NewClaimEvent(event.ClaimCreated, claim, "X2", event.SourceUser)))
	require.NoError(t, bus.Publish(ctx, event.NewClaimEvent(event.ClaimReleased, claim, "X2", event.SourceUser)))
	require.NoError(t, bus.Publish(ctx, event.NewQueueEvent(event.PriorityGranted, domain.QueueEntry{UserID: "u2", RespawnID: 2}, "X2", 1, event.SourceHousekeeping)))
	require.NoError(t, bus.Publish(ctx, event.NewNotificationCreatedEvent(domain.Notification{UserID: "u2", Type: domain.NotificationClaimReady})))
	require.NoError(t, bus.Publish(ctx, event.NewHousekeepingCompletedEvent(event.HousekeepingCompletedPayloadV1{ExpiredClaims: 3})))

	assert.Equal(t, before[0]+1, testutil.ToFloat64(created))
	assert.Equal(t, before[1]+1, testutil.ToFloat64(released))
	assert.Equal(t, before[2]+1, testutil.ToFloat64(granted))
	assert.Equal(t, before[3]+1, testutil.ToFloat64(claimReady))
	assert.Equal(t, before[4]+3, testutil.ToFloat64(expired))
	assert.Equal(t, before[5]+1, testutil.ToFloat64(HousekeepingRuns))
}

func TestEventMetricsCollector_IgnoresBadPayloads(t *testing.T) {
	err := NewEventMetricsCollector().HandleEvent(context.Background(), event.Event{
		Type:    event.NotificationCreated,
		Payload: make(chan int),
	})
	assert.NoError(t, err)
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/respawns/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/respawns/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/respawns/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestRegisterFeedClients(t *testing.T) {
	reg := prometheus.NewRegistry()
	clients := 4
	require.NoError(t, RegisterFeedClients(reg, func() int { return clients }))

	count, err := testutil.GatherAndCount(reg, MetricNameFeedClients)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Error(t, RegisterFeedClients(reg, func() int { return 0 }), "duplicate registration")
}
