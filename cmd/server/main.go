package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/beerlens/backend/config"
	"github.com/beerlens/backend/internal/di"
	"github.com/beerlens/backend/internal/logging"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting BeerLens backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("session_store", cfg.Session.Store))

	if cfg.Remote.ProxyBase == "" {
		logger.Warn("no proxy base configured, product requests go directly to the shop")
	}

	container, err := di.BuildContainer(cfg, logger, nil)
	if err != nil {
		logger.Fatal("failed to build container", zap.Error(err))
	}
	defer func() {
		if err := container.Cleanup(); err != nil {
			logger.Error("cleanup failed", zap.Error(err))
		}
	}()

	// Stop on interrupt signal for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Serve(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
