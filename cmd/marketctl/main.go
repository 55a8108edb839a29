package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/asset-marketplace/internal/cli"
	"github.com/magabrotheeeer/asset-marketplace/internal/config"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/logger"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/asset"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/entitlement"
	"github.com/magabrotheeeer/asset-marketplace/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func open(ctx context.Context) (*cli.Env, func(), error) {
	cfg := config.MustLoad()
	log, err := logger.Setup(cfg.Env, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, nil, err
	}
	env := &cli.Env{
		Users:        db,
		Entitlements: entitlement.NewService(db, nil, nil, log),
		Assets:       asset.NewService(db, nil, log),
		Migrator:     cli.SQLMigrator{DB: db.DB, Path: cfg.MigrationsPath},
	}
	return env, func() { _ = db.Close() }, nil
}
