// Package entitlement — долговременный статус подписки пользователя
// и соответствие покупателей платёжного провайдера пользователям.
// Статус меняется только обработчиком платёжных событий или администратором.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/metrics"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/auth"
)

// Источники смены статуса в событии subscription.changed.
const (
	SourcePayment = "payment"
	SourceAdmin   = "admin"
)

// Store — операции хранилища, нужные сервису.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserStatus(ctx context.Context, id string, status models.SubStatus) error
	UpdateUserRole(ctx context.Context, id string, role models.Role) error
	LinkCustomer(ctx context.Context, customerID, userID string) error
	GetUserIDByCustomer(ctx context.Context, customerID string) (string, error)
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Identity — всё, что событие провайдера сообщает о пользователе.
// Поля проверяются по порядку: id пользователя, id покупателя, email.
type Identity struct {
	UserID     string
	CustomerID string
	Email      string
}

// Service управляет статусом подписки.
type Service struct {
	store   Store
	pub     EventPublisher
	metrics metrics.Recorder
	log     *slog.Logger
}

// NewService создаёт Service. pub может быть nil: события тогда не публикуются.
func NewService(store Store, pub EventPublisher, rec metrics.Recorder, log *slog.Logger) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{store: store, pub: pub, metrics: rec, log: log}
}

// GetStatus возвращает текущий статус подписки пользователя.
func (s *Service) GetStatus(ctx context.Context, userID string) (models.SubStatus, error) {
	const op = "entitlement.GetStatus"
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return u.SubscriptionStatus, nil
}

// Resolve находит пользователя по Identity. Если ни одно поле не совпало, возвращает models.ErrUserNotFound.
func (s *Service) Resolve(ctx context.Context, id Identity) (*models.User, error) {
	const op = "entitlement.Resolve"
	if id.UserID != "" {
		u, err := s.store.GetUserByID(ctx, id.UserID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, models.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if id.CustomerID != "" {
		userID, err := s.store.GetUserIDByCustomer(ctx, id.CustomerID)
		if err == nil {
			u, err := s.store.GetUserByID(ctx, userID)
			if err == nil {
				return u, nil
			}
			if !errors.Is(err, models.ErrUserNotFound) {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		} else if !errors.Is(err, models.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if email := models.NormalizeEmail(id.Email); email != "" {
		u, err := s.store.GetUserByEmail(ctx, email)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, models.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
}

// SetStatus устанавливает статус пользователю, найденному по Identity.
// Повторная установка того же статуса ничего не меняет и событие не публикует.
func (s *Service) SetStatus(ctx context.Context, id Identity, status models.SubStatus, source string) (*models.User, error) {
	const op = "entitlement.SetStatus"
	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown status %q", op, models.ErrValidation, status)
	}
	u, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.SubscriptionStatus == status {
		return u, nil
	}
	if err := s.store.UpdateUserStatus(ctx, u.ID, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	prev := u.SubscriptionStatus
	u.SubscriptionStatus = status

	s.log.Info("subscription status changed",
		slog.String("op", op),
		slog.String("user_id", u.ID),
		slog.String("from", string(prev)),
		slog.String("to", string(status)),
		slog.String("source", source),
	)
	s.metrics.StatusChanged(string(status))
	s.publish(ctx, u, source)
	return u, nil
}

// LinkCustomer запоминает покупателя провайдера за пользователем.
func (s *Service) LinkCustomer(ctx context.Context, customerID, userID string) error {
	const op = "entitlement.LinkCustomer"
	if customerID == "" {
		return nil
	}
	if err := s.store.LinkCustomer(ctx, customerID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Override — ручная установка статуса администратором.
func (s *Service) Override(ctx context.Context, actor models.Principal, userID string, status models.SubStatus) (*models.User, error) {
	const op = "entitlement.Override"
	if err := auth.Authorize(actor, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := s.SetStatus(ctx, Identity{UserID: userID}, status, SourceAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("status overridden by admin", slog.String("op", op), slog.String("admin_id", actor.UserID), slog.String("user_id", userID))
	return u, nil
}

// PromoteRole — смена роли администратором.
func (s *Service) PromoteRole(ctx context.Context, actor models.Principal, userID string, role models.Role) (*models.User, error) {
	const op = "entitlement.PromoteRole"
	if err := auth.Authorize(actor, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown role %q", op, models.ErrValidation, role)
	}
	if err := s.store.UpdateUserRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("role changed", slog.String("op", op), slog.String("admin_id", actor.UserID),
		slog.String("user_id", userID), slog.String("role", string(role)))
	return u, nil
}

func (s *Service) publish(ctx context.Context, u *models.User, source string) {
	if s.pub == nil {
		return
	}
	err := s.pub.Publish(ctx, models.EventSubscriptionChanged, models.SubscriptionChangedEvent{
		UserID: u.ID,
		Email:  u.Email,
		Status: u.SubscriptionStatus,
		Source: source,
	})
	if err != nil {
		s.log.Warn("failed to publish subscription.changed", slog.String("user_id", u.ID), sl.Err(err))
	}
}
