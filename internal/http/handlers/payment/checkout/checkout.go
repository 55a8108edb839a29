// Package checkout обрабатывает создание сессии оплаты подписки.
package checkout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Service создаёт ссылку на оплату.
type Service interface {
	Checkout(ctx context.Context, p models.Principal) (string, error)
}

// Response — ссылка на страницу оплаты провайдера.
type Response struct {
	URL string `json:"url" example:"https://checkout.stripe.com/c/pay/cs_test_123"`
}

// Handler обрабатывает запросы на оплату подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Оплатить подписку
// @Description Создаёт hosted checkout у платёжного провайдера для текущего пользователя.
// @Tags Payments
// @Produce  json
// @Success 200 {object} Response "Ссылка на оплату"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /subscriptions/checkout [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	url, err := h.service.Checkout(r.Context(), p)
	if err != nil {
		if status := response.FailErr(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to create checkout", sl.Err(err))
		}
		return
	}
	response.OK(w, r, http.StatusOK, Response{URL: url})
}
