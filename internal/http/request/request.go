// Package request — два способа принять тело запроса: структурированный JSON
// для обычных маршрутов и сырые байты для маршрутов с подписью над телом.
package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/render"
)

// Лимиты тела запроса.
const (
	MaxJSONBytes    int64 = 1 << 20
	MaxWebhookBytes int64 = 1 << 16
)

// ErrTooLarge — тело превысило лимит.
var ErrTooLarge = errors.New("request body too large")

// DecodeJSON декодирует JSON‑тело в dst с ограничением размера.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBytes)
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrTooLarge
		}
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// RawBody читает тело без какого‑либо разбора. Байты возвращаются в том виде,
// в каком пришли, чтобы подпись над ними оставалась проверяемой.
func RawBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
