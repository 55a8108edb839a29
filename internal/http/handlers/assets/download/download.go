// Package download выдаёт лицензию и временную ссылку на файл ассета.
package download

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// IdempotencyHeader — необязательный ключ, по которому повтор запроса
// возвращает ту же лицензию.
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKey = 255

// Service выдаёт лицензии.
type Service interface {
	IssueLicense(ctx context.Context, p models.Principal, assetID, idempotencyKey string) (*models.IssuedLicense, error)
}

// Handler обрабатывает скачивание.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Скачать ассет
// @Description Требует активную подписку. Каждый вызов без Idempotency-Key выдаёт новую лицензию.
// @Tags Licenses
// @Produce  json
// @Param id path string true "ID ассета"
// @Param Idempotency-Key header string false "Ключ идемпотентности"
// @Success 200 {object} response.Response "Лицензия и ссылка на файл"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Нужна активная подписка"
// @Failure 404 {object} response.ErrorResponse "Ассет не найден"
// @Failure 409 {object} response.ErrorResponse "Ключ идемпотентности уже использован для другого ассета"
// @Router /assets/{id}/download [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.download"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	key := r.Header.Get(IdempotencyHeader)
	if len(key) > maxIdempotencyKey {
		response.Fail(w, r, http.StatusUnprocessableEntity, "idempotency key too long")
		return
	}

	lic, err := h.service.IssueLicense(r.Context(), p, chi.URLParam(r, "id"), key)
	if err != nil {
		status := response.FailErr(w, r, err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to issue license", sl.Err(err))
		} else {
			log.Info("download refused", slog.Int("status", status), slog.String("user_id", p.UserID))
		}
		return
	}
	response.OK(w, r, http.StatusOK, lic)
}
