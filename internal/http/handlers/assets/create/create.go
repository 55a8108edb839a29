// Package create принимает загрузку нового ассета в multipart/form-data.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/asset"
)

// multipartMemory — сколько формы держать в памяти, остальное уходит во временные файлы.
const multipartMemory = 32 << 20

// Service создаёт ассет.
type Service interface {
	Create(ctx context.Context, p models.Principal, in asset.Upload) (*models.Asset, error)
}

// Form — текстовые поля формы загрузки.
type Form struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=5000"`
	Type        string `validate:"max=50"`
	Tags        string `validate:"max=500"`
	ThumbURL    string `validate:"omitempty,url"`
}

// Handler обрабатывает загрузку ассетов.
type Handler struct {
	log      *slog.Logger
	service  Service
	maxBytes int64
	validate *validator.Validate
}

// New создаёт Handler. maxBytes ограничивает всё тело запроса.
func New(log *slog.Logger, service Service, maxBytes int64) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		maxBytes: maxBytes,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Загрузить ассет
// @Description Доступно авторам и администраторам. Ассет автора попадает на модерацию.
// @Tags Assets
// @Accept  mpfd
// @Produce  json
// @Param title formData string true "Название"
// @Param description formData string false "Описание"
// @Param type formData string false "Тип"
// @Param tags formData string false "Теги через запятую"
// @Param thumb_url formData string false "Превью"
// @Param file formData file true "Файл ассета"
// @Success 201 {object} response.Response "Ассет создан"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 413 {object} response.ErrorResponse "Файл слишком большой"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /assets [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Fail(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		log.Debug("failed to parse multipart form", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := Form{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Type:        r.FormValue("type"),
		Tags:        r.FormValue("tags"),
		ThumbURL:    r.FormValue("thumb_url"),
	}
	if err := h.validate.Struct(form); err != nil {
		response.Invalid(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Fail(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	a, err := h.service.Create(r.Context(), p, asset.Upload{
		Title:       form.Title,
		Description: form.Description,
		Type:        form.Type,
		Tags:        form.Tags,
		ThumbURL:    form.ThumbURL,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		File:        file,
	})
	if err != nil {
		if status := response.FailErr(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to create asset", sl.Err(err))
		}
		return
	}
	response.OK(w, r, http.StatusCreated, a)
}
