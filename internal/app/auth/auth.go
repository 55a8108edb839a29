// Package auth — gRPC‑сервис проверки access‑токенов для других процессов.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/magabrotheeeer/asset-marketplace/internal/config"
	"github.com/magabrotheeeer/asset-marketplace/internal/grpc/server"
	"github.com/magabrotheeeer/asset-marketplace/internal/grpc/tokenrpc"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/password"
	authservice "github.com/magabrotheeeer/asset-marketplace/internal/services/auth"
	"github.com/magabrotheeeer/asset-marketplace/internal/storage"
)

// App — gRPC‑сервер и его хранилище.
type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	db         *storage.Storage
	logger     *slog.Logger
}

// New открывает хранилище и слушает адрес grpc_auth.address.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"
	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens, err := jwt.NewMaker(jwt.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	authService := authservice.NewService(db, tokens, password.NewHasher(0), logger)

	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grpcServer := grpc.NewServer()
	tokenrpc.RegisterTokenServiceServer(grpcServer, server.NewAuthServer(authService, logger))

	return &App{
		grpcServer: grpcServer,
		listener:   lis,
		db:         db,
		logger:     logger,
	}, nil
}

// Run обслуживает запросы до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("auth gRPC service listening", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	defer a.db.Close()
	select {
	case <-ctx.Done():
		a.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
