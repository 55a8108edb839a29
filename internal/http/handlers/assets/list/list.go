// Package list отдаёт каталог одобренных ассетов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/asset"
)

// Service выдаёт страницу каталога.
type Service interface {
	List(ctx context.Context, params asset.ListParams) (*models.AssetPage, error)
}

// Handler обрабатывает запросы каталога.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог ассетов
// @Description Только одобренные ассеты. Поиск по названию и тегам.
// @Tags Assets
// @Produce  json
// @Param q query string false "Поиск"
// @Param type query string false "Тип ассета"
// @Param page query int false "Номер страницы, с 1"
// @Param limit query int false "Размер страницы, до 100"
// @Success 200 {object} response.Response "Страница каталога"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Router /assets [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	page, err := intParam(q.Get("page"))
	if err != nil {
		response.Fail(w, r, http.StatusBadRequest, "invalid page")
		return
	}
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		response.Fail(w, r, http.StatusBadRequest, "invalid limit")
		return
	}

	res, err := h.service.List(r.Context(), asset.ListParams{
		Query: q.Get("q"),
		Type:  q.Get("type"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		log.Error("failed to list assets", sl.Err(err))
		response.FailErr(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, res)
}

// intParam разбирает необязательный неотрицательный параметр; пустой даёт 0.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
