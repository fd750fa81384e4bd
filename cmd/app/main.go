// @title Respawn Queue API
// @version 1.0
// @description Guild respawn claim and queue coordination.
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/osse101/RespawnQueue_Go/internal/bootstrap"
	"github.com/osse101/RespawnQueue_Go/internal/config"
	"github.com/osse101/RespawnQueue_Go/internal/database"
	"github.com/osse101/RespawnQueue_Go/internal/database/schema"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/server"
	"github.com/osse101/RespawnQueue_Go/internal/sse"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		return err
	}

	logFile, err := bootstrap.SetupLogger(cfg, logger.DefaultServiceName)
	if err != nil {
		return err
	}
	defer logFile.Close()

	for _, w := range warnings {
		slog.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPool(ctx, database.PoolConfig{
		ConnString:      cfg.GetDBConnString(),
		MaxConns:        cfg.DBMaxConns,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		ApplicationName: logger.DefaultServiceName,
		ConnectRetries:  database.DefaultConnectRetries,
	})
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := schema.Migrate(ctx, dbPool); err != nil {
		return err
	}

	events, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		return err
	}

	repos := bootstrap.InitializeRepositories(dbPool)
	svcs, err := bootstrap.InitializeServices(cfg, repos, events.Publisher)
	if err != nil {
		return err
	}

	hub := sse.NewHub()
	hub.Start()

	if err := bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus:      events.Bus,
		Hub:           hub,
		Notifications: svcs.Notifications,
		Audience:      svcs.Roster,
		Registerer:    prometheus.DefaultRegisterer,
	}); err != nil {
		return err
	}

	background, err := bootstrap.StartBackground(cfg, svcs.Coordinator, svcs.Notifications)
	if err != nil {
		return err
	}

	srv := server.NewServer(server.Config{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		AllowedOrigins: cfg.AllowedOrigins,
	}, server.Dependencies{
		DB:            dbPool,
		Coordinator:   svcs.Coordinator,
		Respawns:      svcs.Respawns,
		Roster:        svcs.Roster,
		Notifications: svcs.Notifications,
		Tokens:        svcs.Tokens,
		Hub:           hub,
		Bus:           events.Publisher,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
			Server:             srv,
			Background:         background,
			Hub:                hub,
			ResilientPublisher: events.Publisher,
		})
		return nil
	})

	return g.Wait()
}
