package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

func TestStatusFor(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("svc.Op: %w", err) }
	tests := []struct {
		err  error
		want int
	}{
		{wrap(models.ErrInvalidCredentials), http.StatusUnauthorized},
		{wrap(models.ErrInvalidToken), http.StatusUnauthorized},
		{wrap(models.ErrForbidden), http.StatusForbidden},
		{wrap(models.ErrNotEntitled), http.StatusPaymentRequired},
		{wrap(models.ErrAssetNotFound), http.StatusNotFound},
		{wrap(models.ErrLicenseNotFound), http.StatusNotFound},
		{wrap(models.ErrSignatureInvalid), http.StatusBadRequest},
		{wrap(models.ErrConflict), http.StatusConflict},
		{wrap(models.ErrValidation), http.StatusUnprocessableEntity},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, msg := StatusFor(tt.err)
		assert.Equal(t, tt.want, got, tt.err.Error())
		assert.NotContains(t, msg, "svc.Op")
	}
}

func TestStatusFor_ValidationMessage(t *testing.T) {
	err := fmt.Errorf("asset.Create: %w: title is required", models.ErrValidation)
	_, msg := StatusFor(err)
	assert.Equal(t, "title is required", msg)
}

func TestFailErr(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	status := FailErr(w, r, fmt.Errorf("x: %w", models.ErrNotEntitled))
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, StatusError, body.Status)
	assert.Equal(t, "active subscription required", body.Error)
}

func TestValidationError(t *testing.T) {
	type req struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
		Role     string `validate:"oneof=USER ADMIN"`
	}
	err := validator.New().Struct(req{Email: "nope", Password: "short", Role: "ROOT"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Password must be at least 8 characters")
	assert.Contains(t, resp.Error, "field Role must be one of: USER ADMIN")
}
