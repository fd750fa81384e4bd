package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/server"
	"github.com/osse101/RespawnQueue_Go/internal/sse"
)

// ShutdownComponents holds all components that need graceful shutdown
type ShutdownComponents struct {
	Server             *server.Server
	Background         *Background
	Hub                *sse.Hub
	ResilientPublisher *event.ResilientPublisher
}

// GracefulShutdown stops components in dependency order:
// 1. Change feed hub (end long-lived streams so the server can drain)
// 2. HTTP server (stop accepting new requests)
// 3. Background workers (finish the in-flight housekeeping pass)
// 4. Event publisher (flush pending retries)
//
// Errors are logged and do not stop the sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	if components.Hub != nil {
		components.Hub.Stop()
	}

	slog.Info(LogMsgShuttingDownServer)
	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if bg := components.Background; bg != nil {
		slog.Info(LogMsgShuttingDownWorkers)
		if err := bg.Housekeeping.Shutdown(ctx); err != nil {
			slog.Error(LogMsgHousekeepingShutdownFailed, "error", err)
		}
		bg.Scheduler.Stop()
		bg.Pool.Stop()
	}

	if components.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := components.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	slog.Info(LogMsgServerStopped)
}
