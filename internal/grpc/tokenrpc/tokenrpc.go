// Package tokenrpc описывает gRPC‑сервис проверки access‑токенов.
// Сообщения используют well-known типы protobuf: запрос google.protobuf.StringValue
// с токеном, ответ google.protobuf.Struct с полями user_id, role, email.
package tokenrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// ServiceName — полное имя сервиса.
const ServiceName = "marketplace.auth.v1.TokenService"

const verifyAccessFullMethod = "/" + ServiceName + "/VerifyAccess"

// TokenServiceServer — серверная сторона сервиса.
type TokenServiceServer interface {
	VerifyAccess(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

func verifyAccessHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).VerifyAccess(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: verifyAccessFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TokenServiceServer).VerifyAccess(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc — описание сервиса для grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "VerifyAccess",
			Handler:    verifyAccessHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/auth/v1/token.proto",
}

// RegisterTokenServiceServer регистрирует реализацию на сервере.
func RegisterTokenServiceServer(s grpc.ServiceRegistrar, srv TokenServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// TokenServiceClient — клиентская сторона сервиса.
type TokenServiceClient interface {
	VerifyAccess(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type tokenServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTokenServiceClient создаёт клиента поверх соединения.
func NewTokenServiceClient(cc grpc.ClientConnInterface) TokenServiceClient {
	return &tokenServiceClient{cc: cc}
}

func (c *tokenServiceClient) VerifyAccess(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, verifyAccessFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// PrincipalToStruct кодирует субъекта в ответ.
func PrincipalToStruct(p models.Principal) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"user_id": p.UserID,
		"role":    string(p.Role),
		"email":   p.Email,
	})
}

// PrincipalFromStruct разбирает ответ. Ответ без user_id считается ошибкой.
func PrincipalFromStruct(s *structpb.Struct) (models.Principal, error) {
	fields := s.GetFields()
	p := models.Principal{
		UserID: fields["user_id"].GetStringValue(),
		Role:   models.Role(fields["role"].GetStringValue()),
		Email:  fields["email"].GetStringValue(),
	}
	if p.UserID == "" || !p.Role.Valid() {
		return models.Principal{}, fmt.Errorf("tokenrpc: malformed principal %v", fields)
	}
	return p, nil
}
