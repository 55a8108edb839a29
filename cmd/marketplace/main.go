// Package main Asset Marketplace API
//
// @title           Asset Marketplace API
// @version         1.0
// @description     API маркетплейса цифровых ассетов по подписке

// @host      localhost:4000
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/asset-marketplace/internal/app/marketplace"
	"github.com/magabrotheeeer/asset-marketplace/internal/config"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/logger"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Setup(cfg.Env, cfg.LogFile)
	if err != nil {
		slog.Error("failed to set up logger", sl.Err(err))
		os.Exit(1)
	}

	log.Info("starting marketplace", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := marketplace.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("marketplace stopped gracefully")
}
