package jwt

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Аудитории токенов. Access никогда не принимается там, где ждут refresh, и наоборот.
const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// AccessClaims описывает данные access‑токена: sub, роль и email.
type AccessClaims struct {
	Role                 models.Role `json:"role"`
	Email                string      `json:"email"`
	jwt.RegisteredClaims             // sub = id пользователя
}

// RefreshClaims содержит только идентичность пользователя.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Principal переводит claims в субъект запроса.
func (c *AccessClaims) Principal() models.Principal {
	return models.Principal{
		UserID: c.Subject,
		Role:   c.Role,
		Email:  c.Email,
	}
}
