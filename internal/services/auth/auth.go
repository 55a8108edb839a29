// Package auth реализует регистрацию, вход, обновление токенов
// и единую проверку прав Authorize.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/asset-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// TokenMaker выпускает и проверяет токены.
type TokenMaker interface {
	IssueAccess(user *models.User) (string, error)
	IssueRefresh(user *models.User) (string, error)
	VerifyAccess(token string) (*jwt.AccessClaims, error)
	VerifyRefresh(token string) (*jwt.RefreshClaims, error)
}

// PasswordHasher хеширует и сверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Session — результат регистрации или входа.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Service отвечает за учётные данные пользователей.
type Service struct {
	users  UserRepository
	tokens TokenMaker
	hasher PasswordHasher
	log    *slog.Logger
}

// NewService создаёт Service.
func NewService(users UserRepository, tokens TokenMaker, hasher PasswordHasher, log *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, hasher: hasher, log: log}
}

// Register создаёт пользователя с ролью USER и статусом INACTIVE и выдаёт пару токенов.
// Роль и статус никогда не берутся из запроса.
func (s *Service) Register(ctx context.Context, email, password, name string) (*Session, error) {
	const op = "auth.Register"
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.CreateUser(ctx, &models.User{
		Email:              models.NormalizeEmail(email),
		Name:               strings.TrimSpace(name),
		PasswordHash:       hash,
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubInactive,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("op", op), slog.String("user_id", user.ID))
	return s.session(op, user)
}

// Login проверяет пароль и выдаёт пару токенов.
// Неизвестный email и неверный пароль неразличимы: оба дают ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.Debug("password mismatch", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	return s.session(op, user)
}

// Refresh проверяет refresh‑токен и выпускает новый access‑токен,
// перечитывая пользователя, чтобы смена роли сразу попала в claims.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "auth.Refresh"
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, models.ErrUserNotFound) {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return access, nil
}

// VerifyAccess проверяет access‑токен и возвращает субъекта запроса.
func (s *Service) VerifyAccess(_ context.Context, token string) (models.Principal, error) {
	const op = "auth.VerifyAccess"
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return claims.Principal(), nil
}

func (s *Service) session(op string, user *models.User) (*Session, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}
