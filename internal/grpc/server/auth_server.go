// Package server реализует gRPC‑сервер проверки access‑токенов.
//
// AuthServer принимает токен, делегирует проверку сервису аутентификации
// и возвращает субъекта. Логирует отказы без самого токена.
package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/asset-marketplace/internal/grpc/tokenrpc"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// TokenVerifier проверяет access‑токен.
type TokenVerifier interface {
	VerifyAccess(ctx context.Context, token string) (models.Principal, error)
}

// AuthServer реализует tokenrpc.TokenServiceServer.
type AuthServer struct {
	verifier TokenVerifier
	log      *slog.Logger
}

var _ tokenrpc.TokenServiceServer = (*AuthServer)(nil)

// NewAuthServer создаёт AuthServer.
func NewAuthServer(verifier TokenVerifier, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		verifier: verifier,
		log:      logger,
	}
}

// VerifyAccess проверяет токен. На недействительный токен отвечает codes.Unauthenticated.
func (s *AuthServer) VerifyAccess(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.VerifyAccess"
	token := req.GetValue()
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "token is required")
	}

	p, err := s.verifier.VerifyAccess(ctx, token)
	if errors.Is(err, models.ErrInvalidToken) {
		s.log.Debug("token rejected", slog.String("op", op), sl.Err(err))
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	if err != nil {
		s.log.Error("token verification failed", slog.String("op", op), sl.Err(err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	out, err := tokenrpc.PrincipalToStruct(p)
	if err != nil {
		s.log.Error("failed to encode principal", slog.String("op", op), sl.Err(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}
