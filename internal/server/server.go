package server

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/RespawnQueue_Go/internal/auth"
	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/database"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/handler"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/metrics"
	"github.com/osse101/RespawnQueue_Go/internal/notification"
	"github.com/osse101/RespawnQueue_Go/internal/respawn"
	"github.com/osse101/RespawnQueue_Go/internal/roster"
	"github.com/osse101/RespawnQueue_Go/internal/sse"
)

// Config holds the HTTP surface settings
type Config struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	AllowedOrigins []string
	MaxBodyBytes   int64
	Detector       DetectorConfig
}

// Dependencies are the services the routes are served from
type Dependencies struct {
	DB            database.Pool
	Coordinator   coordinator.Service
	Respawns      respawn.Service
	Roster        roster.Service
	Notifications notification.Service
	Tokens        *auth.TokenManager
	Hub           *sse.Hub
	Bus           event.Bus
}

// Server is the coordinator's HTTP front end
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(cfg Config, deps Dependencies) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewRouter(cfg, deps),
			ReadHeaderTimeout: ReadHeaderTimeout,
			IdleTimeout:       defaultServerIdleTimeout,
		},
	}
}

// NewRouter builds the route tree
func NewRouter(cfg Config, deps Dependencies) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetectorWithConfig(cfg.Detector)

	r.Use(SecurityHeadersMiddleware())
	r.Use(loggingMiddleware)
	r.Use(APIKeyMiddleware(cfg.APIKey, cfg.TrustedProxies, detector))
	r.Use(RateLimitMiddleware(cfg.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(cfg.MaxBodyBytes))
	r.Use(metrics.Middleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(deps.DB, deps.Hub))
	r.Get("/version", handler.HandleVersion())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	rpcHandler := handler.NewCoordinatorHandler(deps.Coordinator)
	respawnHandler := handler.NewRespawnHandler(deps.Respawns)
	userHandler := handler.NewUserHandler(deps.Roster, deps.Coordinator)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	authHandler := handler.NewAuthHandler(deps.Roster, deps.Tokens)
	adminHandler := handler.NewAdminHandler(deps.Coordinator, deps.Respawns, deps.Roster, deps.Bus)
	feedHandler := handler.NewAdminFeedHandler(deps.Hub)

	r.Route("/api/v1", func(r chi.Router) {
		// API key only
		r.Post("/auth/token", authHandler.HandleIssueToken)

		// API key and user token
		r.Group(func(r chi.Router) {
			r.Use(deps.Tokens.Middleware)

			r.Route("/rpc", func(r chi.Router) {
				r.Post("/"+handler.RPCClaimRespawn, rpcHandler.HandleClaimRespawn)
				r.Post("/"+handler.RPCReleaseClaim, rpcHandler.HandleReleaseClaim)
				r.Post("/"+handler.RPCJoinQueue, rpcHandler.HandleJoinQueue)
				r.Post("/"+handler.RPCLeaveQueue, rpcHandler.HandleLeaveQueue)
			})

			r.Route("/respawns", func(r chi.Router) {
				r.Get("/", respawnHandler.HandleOverview)
				r.Get("/{id}", respawnHandler.HandleGetRespawn)
				r.Get("/{id}/queue", respawnHandler.HandleQueue)
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", respawnHandler.HandleListFavorites)
				r.Put("/{id}", respawnHandler.HandleAddFavorite)
				r.Delete("/{id}", respawnHandler.HandleRemoveFavorite)
			})

			r.Route("/me", func(r chi.Router) {
				r.Get("/", userHandler.HandleMe)
				r.Get("/claims", userHandler.HandleState)
				r.Get("/characters", userHandler.HandleListCharacters)
				r.Post("/characters", userHandler.HandleAddCharacter)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.HandleList)
				r.Get("/unread_count", notificationHandler.HandleUnreadCount)
				r.Post("/read_all", notificationHandler.HandleMarkAllRead)
				r.Post("/{id}/read", notificationHandler.HandleMarkRead)
			})

			r.Route("/feed", func(r chi.Router) {
				r.Get("/", sse.Handler(deps.Hub))
				r.Get("/ws", sse.WebSocketHandler(deps.Hub, cfg.AllowedOrigins))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Get("/settings", adminHandler.HandleGetSettings)
				r.Put("/settings", adminHandler.HandleUpdateSettings)

				r.Post("/respawns", adminHandler.HandleCreateRespawn)
				r.Delete("/respawns/{id}", adminHandler.HandleDeleteRespawn)

				r.Get("/members", adminHandler.HandleListMembers)
				r.Post("/members", adminHandler.HandleRegisterMember)
				r.Patch("/members/{userID}", adminHandler.HandleUpdateMember)
				r.Post("/members/{userID}/characters", adminHandler.HandleAddMemberCharacter)

				r.Route("/events", func(r chi.Router) {
					r.Post("/ticket_created", adminHandler.HandleTicketCreated)
					r.Post("/ticket_updated", adminHandler.HandleTicketUpdated)
					r.Post("/hunted_online", adminHandler.HandleHuntedOnline)
					r.Post("/system_alert", adminHandler.HandleSystemAlert)
				})

				r.Post("/housekeeping", adminHandler.HandleRunHousekeeping)
				r.Get("/cache/stats", adminHandler.HandleCacheStats)
				r.Get("/feed/stats", feedHandler.HandleStats)
			})
		})
	})

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach Flush and Hijack on the
// underlying writer for the feed routes
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Flush forwards to the underlying writer so SSE frames are not buffered
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack hands the connection to the WebSocket upgrader
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(rw.ResponseWriter).Hijack()
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())
		log.Debug(LogMsgRequestHeaders, "headers", redactHeaders(r.Header))

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// redactHeaders copies h with credentials masked
func redactHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
			out[k] = []string{RedactedValue}
		} else {
			out[k] = v
		}
	}
	return out
}

// Handler returns the root handler, for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server; it returns http.ErrServerClosed after Stop
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	slog.Default().Info(LogMsgServerStopping)
	return s.httpServer.Shutdown(ctx)
}
