// Package client — клиент gRPC‑сервиса проверки токенов для HTTP API.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/asset-marketplace/internal/grpc/tokenrpc"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// CallTimeout ограничивает один вызов проверки.
const CallTimeout = 3 * time.Second

// AuthClient проверяет токены через удалённый сервис.
type AuthClient struct {
	conn   *grpc.ClientConn
	client tokenrpc.TokenServiceClient
}

// NewAuthClient создаёт клиента для target. Соединение устанавливается лениво.
func NewAuthClient(target string, opts ...grpc.DialOption) (*AuthClient, error) {
	const op = "client.NewAuthClient"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthClient{conn: conn, client: tokenrpc.NewTokenServiceClient(conn)}, nil
}

// Close закрывает соединение.
func (a *AuthClient) Close() error {
	return a.conn.Close()
}

// VerifyAccess возвращает субъекта токена. Отказ сервиса возвращается как models.ErrInvalidToken.
func (a *AuthClient) VerifyAccess(ctx context.Context, token string) (models.Principal, error) {
	const op = "client.VerifyAccess"
	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	resp, err := a.client.VerifyAccess(ctx, wrapperspb.String(token))
	if status.Code(err) == codes.Unauthenticated {
		return models.Principal{}, fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	p, err := tokenrpc.PrincipalFromStruct(resp)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
