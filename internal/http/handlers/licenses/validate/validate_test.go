package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ValidateLicense(ctx context.Context, p models.Principal, licenseKey string) (*models.LicenseInfo, error) {
	args := m.Called(ctx, p, licenseKey)
	info, _ := args.Get(0).(*models.LicenseInfo)
	return info, args.Error(1)
}

func serve(svc Service, principal *models.Principal) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/licenses/{key}", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP)

	req := httptest.NewRequest(http.MethodGet, "/licenses/key-1", nil)
	if principal != nil {
		req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestValidate(t *testing.T) {
	bob := models.Principal{UserID: "u-2", Role: models.RoleUser}
	info := &models.LicenseInfo{AssetID: "a-1", Title: "Pack", IssuedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	tests := []struct {
		name      string
		principal *models.Principal
		mockInfo  *models.LicenseInfo
		mockErr   error
		wantCode  int
	}{
		{name: "anonymous", wantCode: http.StatusUnauthorized},
		{name: "ok", principal: &bob, mockInfo: info, wantCode: http.StatusOK},
		{name: "foreign or unknown key", principal: &bob, mockErr: fmt.Errorf("license.ValidateLicense: %w", models.ErrLicenseNotFound), wantCode: http.StatusNotFound},
		{name: "store failure", principal: &bob, mockErr: errors.New("connection reset"), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.principal != nil {
				svc.On("ValidateLicense", mock.Anything, *tt.principal, "key-1").Return(tt.mockInfo, tt.mockErr).Once()
			}

			rec := serve(svc, tt.principal)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				var got struct {
					Data models.LicenseInfo `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, "a-1", got.Data.AssetID)
				assert.Equal(t, "Pack", got.Data.Title)
			}
			svc.AssertExpectations(t)
		})
	}
}
