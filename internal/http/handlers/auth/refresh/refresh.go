// Package refresh выпускает новый access‑токен по refresh‑токену.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/request"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
)

// Service описывает обновление токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Request — refresh‑токен.
type Request struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Handler обрабатывает запросы обновления токена.
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
// @Summary Обновление access-токена
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Refresh-токен"
// @Success 200 {object} response.Response "Новый access-токен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Недействительный токен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.DecodeJSON(w, r, &req); err != nil {
		log.Debug("failed to decode request body", sl.Err(err))
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

	access, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if status := response.FailErr(w, r, err); status >= http.StatusInternalServerError {
			log.Error("refresh failed", sl.Err(err))
		}
		return
	}
	response.OK(w, r, http.StatusOK, map[string]string{"access_token": access})
}
