// Package paymentwebhook принимает уведомления платёжного провайдера.
//
// Тело читается сырыми байтами и передаётся в сервис без разбора:
// подпись провайдера считается над точным содержимым запроса.
package paymentwebhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/request"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
)

// SignatureHeader — заголовок с подписью Stripe.
const SignatureHeader = "Stripe-Signature"

// Service обрабатывает подписанное событие.
type Service interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

// Handler обрабатывает webhook провайдера.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Webhook платёжного провайдера
// @Description Принимает подписанные события Stripe. Повторная доставка безопасна.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param Stripe-Signature header string true "Подпись события"
// @Success 200 {object} response.Response "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело"
// @Failure 413 {object} response.ErrorResponse "Слишком большое тело"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки, провайдер повторит доставку"
// @Router /webhooks/stripe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := request.RawBody(w, r, request.MaxWebhookBytes)
	if err != nil {
		log.Warn("failed to read webhook body", sl.Err(err))
		if errors.Is(err, request.ErrTooLarge) {
			response.Fail(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.HandleEvent(r.Context(), body, r.Header.Get(SignatureHeader)); err != nil {
		status := response.FailErr(w, r, err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to process webhook event", sl.Err(err))
		} else {
			log.Warn("webhook rejected", sl.Err(err))
		}
		return
	}
	response.OK(w, r, http.StatusOK, map[string]bool{"received": true})
}
