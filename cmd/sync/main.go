// Command sync runs the client-side sync layer for one guild member: it keeps
// a local view of respawns current, raises alerts for notifications and
// accepts claim and queue commands on stdin.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/RespawnQueue_Go/internal/clientsync"
	"github.com/osse101/RespawnQueue_Go/internal/config"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("Sync daemon exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	log := logger.New(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, logger.SyncServiceName, version, "", false), os.Stderr)
	slog.SetDefault(log)

	sinks := []clientsync.Sink{clientsync.NewLogSink(log)}
	if cfg.DiscordToken != "" {
		discordSink, err := clientsync.NewDiscordSink(cfg.DiscordToken, cfg.DiscordAlertChannelID)
		if err != nil {
			return err
		}
		sinks = append(sinks, discordSink)
		log.Info("Discord alerts enabled", "channel_id", cfg.DiscordAlertChannelID)
	}

	syncer := clientsync.New(clientsync.NewAPIClient(cfg.APIURL, cfg.APIKey, cfg.UserToken), clientsync.Options{
		PollInterval: cfg.PollInterval,
		DedupWindow:  cfg.DedupWindow,
		Sinks:        sinks,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return syncer.Run(gctx) })
	g.Go(func() error {
		err := newConsole(syncer, os.Stdin, os.Stdout).Run(gctx)
		if errors.Is(err, errQuit) {
			// Ends the syncer too
			stop()
			return nil
		}
		return err
	})

	return g.Wait()
}
