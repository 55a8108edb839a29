package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/asset-marketplace/internal/app/sender"
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
	log.Info("starting notification-sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sender.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize notification sender", sl.Err(err))
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		log.Error("notification sender stopped with error", sl.Err(err))
		os.Exit(1)
	}
	log.Info("notification-sender stopped gracefully")
}
