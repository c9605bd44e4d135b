package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/tripbook/internal/config"
	"github.com/example/tripbook/internal/database"
	"github.com/example/tripbook/internal/logger"
	"github.com/example/tripbook/internal/metrics"
	"github.com/example/tripbook/internal/routes"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(logger.Config{Development: !cfg.IsProduction(), Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, cfg.DBLogSQL, zl)
	if err != nil {
		zl.Fatal("database init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := routes.NewApp(ctx, routes.Deps{
		DB:      db,
		Config:  cfg,
		Log:     zl,
		Metrics: metrics.New(),
	})

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			zl.Error("shutdown failed", zap.Error(err))
		}
	}()

	zl.Info("starting server", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zl.Fatal("fiber.Listen error", zap.Error(err))
	}
}
