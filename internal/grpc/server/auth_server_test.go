package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyAccess(ctx context.Context, token string) (models.Principal, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.Principal), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthServer_VerifyAccess(t *testing.T) {
	principal := models.Principal{UserID: "u-1", Role: models.RoleAdmin, Email: "admin@example.com"}

	tests := []struct {
		name      string
		token     string
		mockSetup func(*MockVerifier)
		wantCode  codes.Code
	}{
		{
			name:  "valid token",
			token: "good",
			mockSetup: func(m *MockVerifier) {
				m.On("VerifyAccess", mock.Anything, "good").Return(principal, nil).Once()
			},
			wantCode: codes.OK,
		},
		{
			name:      "empty token",
			token:     "",
			mockSetup: func(*MockVerifier) {},
			wantCode:  codes.Unauthenticated,
		},
		{
			name:  "invalid token",
			token: "bad",
			mockSetup: func(m *MockVerifier) {
				m.On("VerifyAccess", mock.Anything, "bad").
					Return(models.Principal{}, errors.Join(models.ErrInvalidToken, errors.New("expired"))).Once()
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name:  "store failure",
			token: "boom",
			mockSetup: func(m *MockVerifier) {
				m.On("VerifyAccess", mock.Anything, "boom").Return(models.Principal{}, errors.New("db down")).Once()
			},
			wantCode: codes.Internal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := new(MockVerifier)
			tt.mockSetup(v)
			srv := NewAuthServer(v, newNoopLogger())

			resp, err := srv.VerifyAccess(context.Background(), wrapperspb.String(tt.token))
			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				require.NoError(t, err)
				fields := resp.GetFields()
				assert.Equal(t, "u-1", fields["user_id"].GetStringValue())
				assert.Equal(t, "ADMIN", fields["role"].GetStringValue())
				assert.Equal(t, "admin@example.com", fields["email"].GetStringValue())
			}
			v.AssertExpectations(t)
		})
	}
}
