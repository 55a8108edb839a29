// Package payment применяет асинхронные события платёжного провайдера
// к статусу подписки и создаёт checkout для оформления подписки.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/metrics"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/paymentprovider"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/auth"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/entitlement"
)

// ProcessedTTL — сколько помнить id обработанного события.
const ProcessedTTL = 24 * time.Hour

// Исходы обработки события для метрик.
const (
	outcomeApplied   = "applied"
	outcomeIgnored   = "ignored"
	outcomeUnmatched = "unmatched"
	outcomeDuplicate = "duplicate"
	outcomeInvalid   = "invalid_signature"
	outcomeFailed    = "error"
)

// Verifier проверяет подпись события над сырыми байтами.
type Verifier interface {
	Verify(payload []byte, header string) (*paymentprovider.Event, error)
}

// CheckoutCreator создаёт hosted checkout у провайдера.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, req paymentprovider.CheckoutRequest) (string, error)
}

// Entitlements — операции над статусом подписки.
type Entitlements interface {
	Resolve(ctx context.Context, id entitlement.Identity) (*models.User, error)
	SetStatus(ctx context.Context, id entitlement.Identity, status models.SubStatus, source string) (*models.User, error)
	LinkCustomer(ctx context.Context, customerID, userID string) error
}

// Deduper помнит уже применённые события.
type Deduper interface {
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error
}

// Service обрабатывает вебхуки и checkout.
type Service struct {
	verifier Verifier
	checkout CheckoutCreator
	ent      Entitlements
	dedup    Deduper
	metrics  metrics.Recorder
	log      *slog.Logger
}

// New создаёт Service. dedup и rec могут быть nil.
func New(verifier Verifier, checkout CheckoutCreator, ent Entitlements, dedup Deduper, rec metrics.Recorder, log *slog.Logger) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		verifier: verifier,
		checkout: checkout,
		ent:      ent,
		dedup:    dedup,
		metrics:  rec,
		log:      log,
	}
}

// HandleEvent проверяет подпись и применяет событие.
// Ошибка подписи оборачивает models.ErrSignatureInvalid, состояние при этом не меняется.
// Неизвестные типы и события без найденного пользователя подтверждаются (nil).
// Ошибка хранилища возвращается, чтобы провайдер повторил доставку.
func (s *Service) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	const op = "payment.HandleEvent"
	log := s.log.With(slog.String("op", op))

	event, err := s.verifier.Verify(payload, signature)
	if err != nil {
		s.metrics.PaymentEvent("unknown", outcomeInvalid)
		log.Warn("webhook rejected", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	log = log.With(slog.String("event_id", event.ID), slog.String("event_type", event.Type))

	if s.seen(ctx, log, event.ID) {
		s.metrics.PaymentEvent(event.Type, outcomeDuplicate)
		log.Info("duplicate event acknowledged")
		return nil
	}

	outcome, err := s.apply(ctx, event)
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		// подтверждаем: провайдер иначе будет повторять бесконечно
		outcome = outcomeUnmatched
		log.Warn("no user matches payment event",
			slog.String("customer_id", event.CustomerID),
			slog.String("client_reference_id", event.ClientReferenceID),
			sl.Err(err))
	case err != nil:
		s.metrics.PaymentEvent(event.Type, outcomeFailed)
		log.Error("failed to apply payment event", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.PaymentEvent(event.Type, outcome)
	s.markProcessed(ctx, log, event.ID)
	log.Debug("payment event handled", slog.String("outcome", outcome))
	return nil
}

func (s *Service) apply(ctx context.Context, event *paymentprovider.Event) (string, error) {
	switch event.Type {
	case paymentprovider.EventCheckoutCompleted:
		return outcomeApplied, s.checkoutCompleted(ctx, event)
	case paymentprovider.EventSubscriptionDeleted:
		_, err := s.ent.SetStatus(ctx, entitlement.Identity{CustomerID: event.CustomerID, Email: event.Email},
			models.SubCanceled, entitlement.SourcePayment)
		return outcomeApplied, err
	case paymentprovider.EventSubscriptionUpdated:
		status, ok := MapSubscriptionStatus(event.SubscriptionStatus)
		if !ok {
			return outcomeIgnored, nil
		}
		_, err := s.ent.SetStatus(ctx, entitlement.Identity{CustomerID: event.CustomerID, Email: event.Email},
			status, entitlement.SourcePayment)
		return outcomeApplied, err
	case paymentprovider.EventInvoicePaymentFailed:
		_, err := s.ent.SetStatus(ctx, entitlement.Identity{CustomerID: event.CustomerID, Email: event.Email},
			models.SubPastDue, entitlement.SourcePayment)
		return outcomeApplied, err
	default:
		return outcomeIgnored, nil
	}
}

// checkoutCompleted устанавливает связь покупателя с пользователем до смены статуса,
// чтобы последующие события без email находили пользователя.
func (s *Service) checkoutCompleted(ctx context.Context, event *paymentprovider.Event) error {
	u, err := s.ent.Resolve(ctx, entitlement.Identity{UserID: event.ClientReferenceID, Email: event.Email})
	if err != nil {
		return err
	}
	if err := s.ent.LinkCustomer(ctx, event.CustomerID, u.ID); err != nil {
		return err
	}
	_, err = s.ent.SetStatus(ctx, entitlement.Identity{UserID: u.ID}, models.SubActive, entitlement.SourcePayment)
	return err
}

// MapSubscriptionStatus переводит статус подписки Stripe в статус маркетплейса.
func MapSubscriptionStatus(status string) (models.SubStatus, bool) {
	switch status {
	case "active", "trialing":
		return models.SubActive, true
	case "past_due", "unpaid":
		return models.SubPastDue, true
	case "canceled", "incomplete_expired":
		return models.SubCanceled, true
	}
	return "", false
}

func (s *Service) seen(ctx context.Context, log *slog.Logger, eventID string) bool {
	if s.dedup == nil || eventID == "" {
		return false
	}
	ok, err := s.dedup.IsProcessed(ctx, eventID)
	if err != nil {
		log.Warn("dedup lookup failed, processing anyway", sl.Err(err))
		return false
	}
	return ok
}

func (s *Service) markProcessed(ctx context.Context, log *slog.Logger, eventID string) {
	if s.dedup == nil || eventID == "" {
		return
	}
	if err := s.dedup.MarkProcessed(ctx, eventID, ProcessedTTL); err != nil {
		log.Warn("failed to mark event processed", sl.Err(err))
	}
}

// Checkout возвращает ссылку на оплату подписки для аутентифицированного пользователя.
// Email и id берутся из principal, а не из тела запроса.
func (s *Service) Checkout(ctx context.Context, p models.Principal) (string, error) {
	const op = "payment.Checkout"
	if err := auth.Authorize(p); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	url, err := s.checkout.CreateCheckout(ctx, paymentprovider.CheckoutRequest{UserID: p.UserID, Email: p.Email})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("checkout created", slog.String("op", op), slog.String("user_id", p.UserID))
	return url, nil
}
