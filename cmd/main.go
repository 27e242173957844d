package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgball2608/tint-feed/internal/app"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.New()
	if err != nil {
		return 1
	}

	log := logger.New(logger.Opts{Env: cfg.App.Env, SentryDSN: cfg.App.SentryUrl})
	defer logger.Flush(2 * time.Second)

	feedApp := fx.New(
		fx.Logger(log),
		fx.StartTimeout(cfg.App.StartTimeout),
		fx.StopTimeout(cfg.App.StopTimeout),
		app.Module,
	)
	if err := feedApp.Err(); err != nil {
		log.Error("Failed to build application", "error", err)
		return 1
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.App.StartTimeout)
	defer cancelStart()
	if err := feedApp.Start(startCtx); err != nil {
		log.Error("Failed to start application", "error", err)
		return 1
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	<-sigCtx.Done()
	log.Info("Shutdown signal received", "env", cfg.App.Env)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), cfg.App.StopTimeout)
	defer cancelStop()
	if err := feedApp.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application", "error", err)
		return 1
	}

	return 0
}
