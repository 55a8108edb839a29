// Package userrole — смена роли пользователя администратором.
package userrole

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

// Service меняет роль.
type Service interface {
	PromoteRole(ctx context.Context, actor models.Principal, userID string, role models.Role) (*models.User, error)
}

// Request — новая роль.
type Request struct {
	Role string `json:"role" validate:"required,oneof=USER CONTRIBUTOR ADMIN"`
}

// Handler обрабатывает смену роли.
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
// @Summary Установить роль пользователя
// @Description Новая роль попадает в access-токен после его обновления.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID пользователя"
// @Param request body Request true "Новая роль"
// @Success 200 {object} response.Response "Пользователь"
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/users/{id}/role [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userrole"
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

	user, err := h.service.PromoteRole(r.Context(), actor, chi.URLParam(r, "id"), models.Role(req.Role))
	if err != nil {
		if status := response.FailErr(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to change role", sl.Err(err))
		}
		return
	}
	response.OK(w, r, http.StatusOK, user)
}
