// Package jwt реализует выпуск и проверку access/refresh токенов.
//
// Access и refresh подписываются двумя независимыми секретами и несут разные
// аудитории, поэтому утечка одного секрета не позволяет подделать другой тип токена.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Config — параметры Maker.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Maker выпускает и проверяет токены. Без побочных эффектов.
type Maker struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewMaker создаёт Maker. Пустой секрет или совпадающие секреты дают ошибку конфигурации.
func NewMaker(cfg Config) (*Maker, error) {
	const op = "jwt.NewMaker"
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("%s: empty signing secret", op)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%s: access and refresh secrets must differ", op)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &Maker{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

// WithClock подменяет источник времени, используется в тестах.
func (m *Maker) WithClock(now func() time.Time) *Maker {
	m.now = now
	return m
}

// AccessTTL возвращает время жизни access‑токена.
func (m *Maker) AccessTTL() time.Duration { return m.accessTTL }

// IssueAccess выпускает access‑токен с id, ролью и email пользователя.
func (m *Maker) IssueAccess(user *models.User) (string, error) {
	const op = "jwt.IssueAccess"
	now := m.now()
	claims := AccessClaims{
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{audienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// IssueRefresh выпускает refresh‑токен, содержащий только id пользователя.
func (m *Maker) IssueRefresh(user *models.User) (string, error) {
	const op = "jwt.IssueRefresh"
	now := m.now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{audienceRefresh},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// VerifyAccess проверяет подпись, срок и аудиторию access‑токена.
func (m *Maker) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	const op = "jwt.VerifyAccess"
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, claims, m.accessSecret, audienceAccess); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidToken, err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%s: %w: malformed claims", op, models.ErrInvalidToken)
	}
	return claims, nil
}

// VerifyRefresh проверяет refresh‑токен. Refresh никогда не служит доказательством доступа.
func (m *Maker) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	const op = "jwt.VerifyRefresh"
	claims := &RefreshClaims{}
	if err := m.parse(tokenStr, claims, m.refreshSecret, audienceRefresh); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w: malformed claims", op, models.ErrInvalidToken)
	}
	return claims, nil
}

func (m *Maker) parse(tokenStr string, claims jwt.Claims, secret []byte, audience string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("token is not valid")
	}
	return nil
}
