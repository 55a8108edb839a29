// Package get отдаёт карточку ассета.
package get

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

// Service ищет ассет с учётом прав зрителя.
type Service interface {
	Get(ctx context.Context, p *models.Principal, id string) (*models.Asset, error)
}

// Handler обрабатывает запросы карточки ассета.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Карточка ассета
// @Tags Assets
// @Produce  json
// @Param id path string true "ID ассета"
// @Success 200 {object} response.Response "Ассет"
// @Failure 404 {object} response.ErrorResponse "Ассет не найден"
// @Router /assets/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var viewer *models.Principal
	if p, ok := middlewarectx.PrincipalFrom(r.Context()); ok {
		viewer = &p
	}

	a, err := h.service.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		if status := response.FailErr(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to get asset", sl.Err(err))
		}
		return
	}
	response.OK(w, r, http.StatusOK, a)
}
