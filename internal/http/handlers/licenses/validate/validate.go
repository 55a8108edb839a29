// Package validate проверяет лицензионный ключ текущего пользователя.
package validate

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

// Service проверяет лицензии.
type Service interface {
	ValidateLicense(ctx context.Context, p models.Principal, licenseKey string) (*models.LicenseInfo, error)
}

// Handler обрабатывает проверку лицензии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверить лицензию
// @Description Ключ действителен только для пользователя, которому он выдан.
// @Tags Licenses
// @Produce  json
// @Param key path string true "Лицензионный ключ"
// @Success 200 {object} response.Response "Сведения о лицензии"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Лицензия не найдена"
// @Router /licenses/{key} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.licenses.validate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	info, err := h.service.ValidateLicense(r.Context(), p, chi.URLParam(r, "key"))
	if err != nil {
		if status := response.FailErr(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to validate license", sl.Err(err))
		}
		return
	}
	response.OK(w, r, http.StatusOK, info)
}
