package login

import (
	"context"

	"github.com/magabrotheeeer/asset-marketplace/internal/services/auth"
)

// Service описывает вход по email и паролю.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}
