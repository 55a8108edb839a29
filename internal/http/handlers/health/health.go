// Package health отвечает на проверки живости.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
)

const pingTimeout = 2 * time.Second

// Pinger — зависимость, доступность которой входит в проверку.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler отвечает 200, если хранилище доступно, и 503 иначе.
type Handler struct {
	log *slog.Logger
	db  Pinger
}

// New создаёт Handler.
func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{log: log, db: db}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.ErrorResponse
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("storage unavailable", slog.String("op", op), sl.Err(err))
		response.Fail(w, r, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	response.OK(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
