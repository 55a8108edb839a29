package client

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/magabrotheeeer/asset-marketplace/internal/grpc/server"
	"github.com/magabrotheeeer/asset-marketplace/internal/grpc/tokenrpc"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/auth"
	"github.com/magabrotheeeer/asset-marketplace/internal/storage/memory"
)

const bufSize = 1024 * 1024

var testJWTConfig = jwt.Config{
	AccessSecret:  "access-secret",
	RefreshSecret: "refresh-secret",
	AccessTTL:     time.Minute,
	RefreshTTL:    time.Hour,
}

type fixture struct {
	client *AuthClient
	maker  *jwt.Maker
	user   *models.User
}

// setup поднимает настоящий сервер проверки токенов поверх bufconn.
func setup(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.New()
	user, err := store.CreateUser(context.Background(), &models.User{
		Email: "a@example.com", Role: models.RoleContributor, SubscriptionStatus: models.SubInactive,
	})
	require.NoError(t, err)

	maker, err := jwt.NewMaker(testJWTConfig)
	require.NoError(t, err)
	svc := auth.NewService(store, maker, nil, log)

	lis := bufconn.Listen(bufSize)
	grpcServer := grpc.NewServer()
	tokenrpc.RegisterTokenServiceServer(grpcServer, server.NewAuthServer(svc, log))
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	c, err := NewAuthClient("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &fixture{client: c, maker: maker, user: user}
}

func TestAuthClient_VerifyAccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	token, err := f.maker.IssueAccess(f.user)
	require.NoError(t, err)

	p, err := f.client.VerifyAccess(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.Principal{UserID: f.user.ID, Role: models.RoleContributor, Email: f.user.Email}, p)
}

func TestAuthClient_Rejects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	refresh, err := f.maker.IssueRefresh(f.user)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":         "",
		"garbage":       "not-a-jwt",
		"refresh token": refresh,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.client.VerifyAccess(ctx, token)
			assert.ErrorIs(t, err, models.ErrInvalidToken)
		})
	}

	past, err := jwt.NewMaker(testJWTConfig)
	require.NoError(t, err)
	expired, err := past.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).IssueAccess(f.user)
	require.NoError(t, err)
	_, err = f.client.VerifyAccess(ctx, expired)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}
