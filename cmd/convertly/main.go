package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/saqibaltaf27/Convertly/server"
	"github.com/saqibaltaf27/Convertly/server/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, nil)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := server.NewServerBuilder(cfg, logger).Build()
	if err != nil {
		logger.Fatal("failed to build conversion server", zap.Error(err))
	}

	logger.Info("starting convertly",
		zap.String("port", cfg.ServerConfig.Port),
		zap.String("storage", cfg.StorageConfig.Provider),
		zap.Duration("retention_max_age", cfg.RetentionConfig.MaxAge),
		zap.Duration("sweep_interval", cfg.RetentionConfig.SweepInterval))

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("conversion server exited", zap.Error(err))
	}
}
