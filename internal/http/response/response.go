// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате,
// а также переводит доменные ошибки в HTTP‑статусы.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case "url":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid url", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// StatusFor переводит доменную ошибку в HTTP‑статус и безопасное сообщение.
// Неизвестные ошибки скрываются за 500.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, models.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, models.ErrNotEntitled):
		return http.StatusPaymentRequired, "active subscription required"
	case errors.Is(err, models.ErrAssetNotFound):
		return http.StatusNotFound, "asset not found"
	case errors.Is(err, models.ErrLicenseNotFound):
		return http.StatusNotFound, "license not found"
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, models.ErrSignatureInvalid):
		return http.StatusBadRequest, "invalid signature"
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, models.ErrValidation):
		return http.StatusUnprocessableEntity, validationMessage(err)
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// validationMessage возвращает текст после "validation failed: ", без префиксов op.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, models.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(models.ErrValidation.Error())+2:]
	}
	return models.ErrValidation.Error()
}

// Fail пишет ответ с ошибкой и статусом.
func Fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Error(msg))
}

// FailErr пишет ответ для доменной ошибки и возвращает выбранный статус.
func FailErr(w http.ResponseWriter, r *http.Request, err error) int {
	status, msg := StatusFor(err)
	Fail(w, r, status, msg)
	return status
}

// OK пишет успешный ответ со статусом.
func OK(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, StatusOKWithData(data))
}

// Invalid пишет 422 с текстом нарушений валидатора.
func Invalid(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		Fail(w, r, http.StatusUnprocessableEntity, "invalid request")
		return
	}
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, ValidationError(verrs))
}
