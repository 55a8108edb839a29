package userstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func (m *ServiceMock) Override(ctx context.Context, actor models.Principal, userID string, status models.SubStatus) (*models.User, error) {
	args := m.Called(ctx, actor, userID, status)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUserStatus(t *testing.T) {
	admin := models.Principal{UserID: "u-admin", Role: models.RoleAdmin}
	contributor := models.Principal{UserID: "u-3", Role: models.RoleContributor}

	tests := []struct {
		name       string
		principal  *models.Principal
		body       string
		callStatus models.SubStatus
		mockUser   *models.User
		mockErr    error
		wantCode   int
		wantStatus models.SubStatus
	}{
		{name: "anonymous", body: `{"status":"ACTIVE"}`, wantCode: http.StatusUnauthorized},
		{name: "lowercase status rejected", principal: &admin, body: `{"status":"active"}`, wantCode: http.StatusUnprocessableEntity},
		{name: "empty body", principal: &admin, body: ``, wantCode: http.StatusBadRequest},
		{
			name: "not admin", principal: &contributor, body: `{"status":"ACTIVE"}`, callStatus: models.SubActive,
			mockErr: fmt.Errorf("entitlement.Override: %w", models.ErrForbidden), wantCode: http.StatusForbidden,
		},
		{
			name: "unknown user", principal: &admin, body: `{"status":"CANCELED"}`, callStatus: models.SubCanceled,
			mockErr: fmt.Errorf("entitlement.Override: %w", models.ErrUserNotFound), wantCode: http.StatusNotFound,
		},
		{
			name: "overridden", principal: &admin, body: `{"status":"PAST_DUE"}`, callStatus: models.SubPastDue,
			mockUser: &models.User{ID: "u-2", SubscriptionStatus: models.SubPastDue}, wantCode: http.StatusOK, wantStatus: models.SubPastDue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callStatus != "" {
				svc.On("Override", mock.Anything, *tt.principal, "u-2", tt.callStatus).Return(tt.mockUser, tt.mockErr).Once()
			}

			r := chi.NewRouter()
			r.Put("/admin/users/{id}/status", New(newNoopLogger(), svc).ServeHTTP)
			req := httptest.NewRequest(http.MethodPut, "/admin/users/u-2/status", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.principal != nil {
				req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), *tt.principal))
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantStatus != "" {
				var got struct {
					Data models.User `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, tt.wantStatus, got.Data.SubscriptionStatus)
			}
			svc.AssertExpectations(t)
		})
	}
}
