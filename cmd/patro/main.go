package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/patrolabs/patro/adapter/cli"
	"github.com/patrolabs/patro/internal/app"
	"github.com/patrolabs/patro/pkg/config"
	"github.com/patrolabs/patro/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development defaults", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cli.SetApp(cli.NewApp(
		container.Converter,
		container.Resolver,
		container.EventRepo,
		container.Reconciler,
		container.SyncConfig(),
		container.CalendarClient != nil,
	))

	cli.Execute()
}
