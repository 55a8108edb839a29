// Package userstatus — ручная смена статуса подписки администратором.
package userstatus

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

// Service меняет статус подписки от имени администратора.
type Service interface {
	Override(ctx context.Context, actor models.Principal, userID string, status models.SubStatus) (*models.User, error)
}

// Request — новый статус подписки.
type Request struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE CANCELED PAST_DUE"`
}

// Handler обрабатывает смену статуса.
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
// @Summary Установить статус подписки пользователя
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID пользователя"
// @Param request body Request true "Новый статус"
// @Success 200 {object} response.Response "Пользователь"
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/users/{id}/status [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userstatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.PrincipalFrom(r.Context())
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

	user, err := h.service.Override(r.Context(), actor, chi.URLParam(r, "id"), models.SubStatus(req.Status))
	if err != nil {
		if status := response.FailErr(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to override subscription status", sl.Err(err))
		}
		return
	}
	response.OK(w, r, http.StatusOK, user)
}
