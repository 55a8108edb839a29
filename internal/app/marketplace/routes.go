// Package marketplace собирает HTTP API маркетплейса.
package marketplace

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-спецификации для /docs.
	_ "github.com/magabrotheeeer/asset-marketplace/internal/docs"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/admin/userrole"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/admin/userstatus"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/assets/create"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/assets/download"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/assets/get"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/assets/list"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/assets/moderate"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/health"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/licenses/validate"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/payment/checkout"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-marketplace/internal/metrics"
)

// AuthService — регистрация, вход и обновление токенов.
type AuthService interface {
	register.Service
	login.Service
	refresh.Service
}

// PaymentService — checkout и приём событий провайдера.
type PaymentService interface {
	checkout.Service
	paymentwebhook.Service
}

// AssetService — каталог.
type AssetService interface {
	list.Service
	get.Service
	create.Service
	moderate.Service
}

// LicenseService — выдача и проверка лицензий.
type LicenseService interface {
	download.Service
	validate.Service
}

// AdminService — ручное управление пользователями.
type AdminService interface {
	userstatus.Service
	userrole.Service
}

// Deps — всё, из чего собирается роутер. TrustProxy разрешает брать адрес клиента
// из заголовков прокси, без него лимитер считает запросы по RemoteAddr.
type Deps struct {
	Log            *slog.Logger
	Auth           AuthService
	Verifier       middlewarectx.TokenVerifier
	Payments       PaymentService
	Assets         AssetService
	Licenses       LicenseService
	Admin          AdminService
	DB             health.Pinger
	Limiter        *middlewarectx.IPRateLimiter
	Metrics        *metrics.Collector  // nil отключает метрики HTTP
	Gatherer       prometheus.Gatherer // nil отключает /metrics
	AllowedOrigins []string
	MaxUploadBytes int64
	TrustProxy     bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", download.IdempotencyHeader},
			MaxAge:         300,
		}),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	log := d.Log
	r.Get("/health", health.New(log, d.DB).ServeHTTP)

	// Тело читается сырыми байтами, JSON-декодирования на этом маршруте нет.
	r.Post("/webhooks/stripe", paymentwebhook.New(log, d.Payments).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(middlewarectx.RateLimitMiddleware(d.Limiter, log))
			}
			r.Post("/auth/register", register.New(log, d.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(log, d.Auth).ServeHTTP)
			r.Post("/auth/refresh", refresh.New(log, d.Auth).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalAuth(d.Verifier, log))
			r.Get("/assets", list.New(log, d.Assets).ServeHTTP)
			r.Get("/assets/{id}", get.New(log, d.Assets).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(d.Verifier, log))
			r.Post("/subscriptions/checkout", checkout.New(log, d.Payments).ServeHTTP)
			r.Post("/assets", create.New(log, d.Assets, d.MaxUploadBytes).ServeHTTP)
			r.Patch("/assets/{id}/status", moderate.New(log, d.Assets).ServeHTTP)
			r.Post("/assets/{id}/download", download.New(log, d.Licenses).ServeHTTP)
			r.Get("/licenses/{key}", validate.New(log, d.Licenses).ServeHTTP)
			r.Put("/admin/users/{id}/status", userstatus.New(log, d.Admin).ServeHTTP)
			r.Put("/admin/users/{id}/role", userrole.New(log, d.Admin).ServeHTTP)
		})
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(d.Gatherer))
	}
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
