// Package moderate меняет статус модерации ассета.
package moderate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/request"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Service модерирует ассеты.
type Service interface {
	Moderate(ctx context.Context, p models.Principal, id string, status models.AssetStatus) (*models.Asset, error)
}

// Request — новый статус.
type Request struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
}

// Handler обрабатывает модерацию.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Модерация ассета
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID ассета"
// @Param request body Request true "Новый статус"
// @Success 200 {object} response.Response "Ассет"
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Failure 404 {object} response.ErrorResponse "Ассет не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /assets/{id}/status [patch]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.moderate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req Request
	if err := request.DecodeJSON(w, r, &req); err != nil {
		if errors.Is(err, request.ErrTooLarge) {
			response.Fail(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Invalid(w, r, err)
		return
	}

	a, err := h.service.Moderate(r.Context(), p, chi.URLParam(r, "id"), models.AssetStatus(req.Status))
	if err != nil {
		if status := response.FailErr(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to moderate asset", sl.Err(err))
		}
		return
	}
	response.OK(w, r, http.StatusOK, a)
}
