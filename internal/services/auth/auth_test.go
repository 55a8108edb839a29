package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/asset-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/password"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/auth"
	"github.com/magabrotheeeer/asset-marketplace/internal/storage/memory"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMaker(t *testing.T) *jwt.Maker {
	m, err := jwt.NewMaker(jwt.Config{AccessSecret: "access-secret", RefreshSecret: "refresh-secret"})
	require.NoError(t, err)
	return m
}

func newService(t *testing.T) (*auth.Service, *memory.Store, *jwt.Maker) {
	store := memory.New()
	maker := newMaker(t)
	return auth.NewService(store, maker, password.NewHasher(bcrypt.MinCost), newNoopLogger()), store, maker
}

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestService_RegisterLoginRoundTrip(t *testing.T) {
	svc, _, maker := newService(t)
	ctx := context.Background()

	tests := []struct {
		email    string
		password string
	}{
		{email: "alice@example.com", password: "password123"},
		{email: "Bob@Example.com ", password: "p@ss w0rd"},
		{email: "carol@example.com", password: "пароль"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			reg, err := svc.Register(ctx, tt.email, tt.password, "Name")
			require.NoError(t, err)
			assert.Equal(t, models.RoleUser, reg.User.Role)
			assert.Equal(t, models.SubInactive, reg.User.SubscriptionStatus)
			assert.NotEqual(t, tt.password, reg.User.PasswordHash)

			login, err := svc.Login(ctx, tt.email, tt.password)
			require.NoError(t, err)

			claims, err := maker.VerifyAccess(login.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, reg.User.ID, claims.Subject)
			assert.Equal(t, models.RoleUser, claims.Role)

			p, err := svc.VerifyAccess(ctx, login.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, reg.User.ID, p.UserID)
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dup@example.com", "password123", "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "DUP@example.com", "password123", "")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "user@example.com", "correct", "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "user@example.com", password: "wrong"},
		{name: "unknown email", email: "ghost@example.com", password: "correct"},
		{name: "empty password", email: "user@example.com", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := svc.Login(ctx, tt.email, tt.password)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, models.ErrInvalidCredentials)
		})
	}
}

func TestService_Login_RepositoryError(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(nil, errors.New("db down")).Once()
	svc := auth.NewService(repo, newMaker(t), password.NewHasher(bcrypt.MinCost), newNoopLogger())

	_, err := svc.Login(context.Background(), "user@example.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "db down")
	repo.AssertExpectations(t)
}

func TestService_Refresh_ReadsCurrentRole(t *testing.T) {
	svc, store, maker := newService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "promoted@example.com", "password123", "")
	require.NoError(t, err)
	require.NoError(t, store.UpdateUserRole(ctx, reg.User.ID, models.RoleContributor))

	access, err := svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	claims, err := maker.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, models.RoleContributor, claims.Role)
}

func TestService_Refresh_Invalid(t *testing.T) {
	svc, _, maker := newService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "r@example.com", "password123", "")
	require.NoError(t, err)

	ghost, err := maker.IssueRefresh(&models.User{ID: "00000000-0000-0000-0000-000000000000"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "access token as refresh", token: reg.AccessToken},
		{name: "garbage", token: "abc"},
		{name: "deleted user", token: ghost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Refresh(ctx, tt.token)
			assert.ErrorIs(t, err, models.ErrInvalidToken)
		})
	}
}

func TestService_VerifyAccess_Expired(t *testing.T) {
	store := memory.New()
	maker := newMaker(t)
	now := time.Now()
	maker.WithClock(func() time.Time { return now })
	svc := auth.NewService(store, maker, password.NewHasher(bcrypt.MinCost), newNoopLogger())

	reg, err := svc.Register(context.Background(), "e@example.com", "password123", "")
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)
	_, err = svc.VerifyAccess(context.Background(), reg.AccessToken)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}
