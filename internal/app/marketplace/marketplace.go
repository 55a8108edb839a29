package marketplace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/asset-marketplace/internal/cache"
	"github.com/magabrotheeeer/asset-marketplace/internal/config"
	"github.com/magabrotheeeer/asset-marketplace/internal/grpc/client"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/licensekey"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/password"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/metrics"
	"github.com/magabrotheeeer/asset-marketplace/internal/migrations"
	"github.com/magabrotheeeer/asset-marketplace/internal/objectstore"
	"github.com/magabrotheeeer/asset-marketplace/internal/paymentprovider"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/asset"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/auth"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/entitlement"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/license"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/payment"
	"github.com/magabrotheeeer/asset-marketplace/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP‑сервер маркетплейса и ресурсы, которые он держит открытыми.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []io.Closer
}

// New открывает хранилище, Redis, брокер и объектное хранилище и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "marketplace.New"
	app := &App{logger: logger}
	fail := func(err error) (*App, error) {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, db)
	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return fail(err)
	}

	redisCache, err := cache.InitServer(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, redisCache)

	objects, err := objectstore.New(cfg.S3)
	if err != nil {
		return fail(err)
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		return fail(err)
	}

	keys, err := licensekey.New(cfg.NodeID)
	if err != nil {
		return fail(err)
	}
	tokens, err := jwt.NewMaker(jwt.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	if err != nil {
		return fail(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitDelay)
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, conn)
		ch, err := rabbitmq.SetupChannel(conn, nil)
		if err != nil {
			return fail(err)
		}
		publisher = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq url is empty, domain events are not published")
	}

	authService := auth.NewService(db, tokens, password.NewHasher(0), logger)

	var verifier middlewarectx.TokenVerifier = authService
	if cfg.GRPCTarget != "" {
		authClient, err := client.NewAuthClient(cfg.GRPCTarget)
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, authClient)
		verifier = authClient
		logger.Info("access tokens are verified by auth service", slog.String("target", cfg.GRPCTarget))
	}

	licenseOpts := []license.Option{license.WithURLTTL(cfg.URLTTL), license.WithMetrics(collector)}
	var entitlementPub entitlement.EventPublisher
	if publisher != nil {
		licenseOpts = append(licenseOpts, license.WithPublisher(publisher))
		entitlementPub = publisher
	}
	entitlements := entitlement.NewService(db, entitlementPub, collector, logger)
	payments := payment.New(
		paymentprovider.NewVerifier(cfg.WebhookSecret),
		paymentprovider.NewClient(cfg.Stripe),
		entitlements,
		redisCache,
		collector,
		logger,
	)

	limiter, err := middlewarectx.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Clients)
	if err != nil {
		return fail(err)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Log:            logger,
		Auth:           authService,
		Verifier:       verifier,
		Payments:       payments,
		Assets:         asset.NewService(db, objects, logger),
		Licenses:       license.NewService(db, objects, keys, logger, licenseOpts...),
		Admin:          entitlements,
		DB:             db,
		Limiter:        limiter,
		Metrics:        collector,
		Gatherer:       reg,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		TrustProxy:     cfg.TrustProxy,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx и затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает ресурсы в обратном порядке открытия.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
