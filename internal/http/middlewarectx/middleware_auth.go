// Package middlewarectx содержит HTTP middleware аутентификации и ограничения частоты.
//
// RequireAuth проверяет Bearer‑токен в заголовке Authorization и кладёт
// субъекта запроса в контекст; без токена запрос отклоняется с 401.
// OptionalAuth делает то же, но запрос без заголовка пропускает анонимно.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey — ключ субъекта запроса в контексте.
const PrincipalKey Key = "principal"

// TokenVerifier проверяет access‑токен: локально или через gRPC‑сервис.
type TokenVerifier interface {
	VerifyAccess(ctx context.Context, token string) (models.Principal, error)
}

// WithPrincipal кладёт субъекта в контекст.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFrom достаёт субъекта из контекста.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	return p, ok && p.UserID != ""
}

// RequireAuth пропускает только запросы с действительным access‑токеном.
func RequireAuth(verifier TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return authMiddleware(verifier, log, true)
}

// OptionalAuth восстанавливает субъекта, если заголовок есть.
// Присланный, но недействительный токен всё равно даёт 401.
func OptionalAuth(verifier TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return authMiddleware(verifier, log, false)
}

func authMiddleware(verifier TokenVerifier, log *slog.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Auth"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" && !required {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				log.Debug("missing or invalid authorization header")
				response.Fail(w, r, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			p, err := verifier.VerifyAccess(r.Context(), strings.TrimSpace(token))
			if err != nil {
				status := response.FailErr(w, r, err)
				if status >= http.StatusInternalServerError {
					log.Error("token verification failed", sl.Err(err))
				} else {
					log.Debug("token rejected", sl.Err(err))
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
