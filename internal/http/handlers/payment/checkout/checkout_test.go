package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Checkout(ctx context.Context, p models.Principal) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCheckout(t *testing.T) {
	alice := models.Principal{UserID: "u-1", Role: models.RoleUser, Email: "alice@example.com"}

	tests := []struct {
		name      string
		principal *models.Principal
		mockURL   string
		mockErr   error
		wantCode  int
		wantURL   string
	}{
		{name: "anonymous", wantCode: http.StatusUnauthorized},
		{name: "ok", principal: &alice, mockURL: "https://pay.example/cs_1", wantCode: http.StatusOK, wantURL: "https://pay.example/cs_1"},
		{name: "provider error", principal: &alice, mockErr: errors.New("stripe down"), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/checkout", nil)
			if tt.principal != nil {
				svc.On("Checkout", mock.Anything, *tt.principal).Return(tt.mockURL, tt.mockErr).Once()
				req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), *tt.principal))
			}
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantURL != "" {
				var got struct {
					Data Response `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, tt.wantURL, got.Data.URL)
			}
			svc.AssertExpectations(t)
		})
	}
}
