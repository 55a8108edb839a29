// Package sender превращает доменные события из RabbitMQ в письма пользователям.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/smtp"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Service отправляет уведомления.
type Service struct {
	dialer smtp.Dialer
	log    *slog.Logger
}

// NewService создаёт Service поверх SMTP‑транспорта.
func NewService(dialer smtp.Dialer, log *slog.Logger) *Service {
	return &Service{dialer: dialer, log: log}
}

// LicenseIssued отправляет квитанцию о выданной лицензии.
func (s *Service) LicenseIssued(_ context.Context, body []byte) error {
	const op = "sender.LicenseIssued"
	var event models.LicenseIssuedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if event.Email == "" {
		s.log.Warn("license event without email", slog.String("op", op), slog.String("license_id", event.LicenseID))
		return nil
	}

	subject := "Лицензия на " + event.Title
	text := fmt.Sprintf("Здравствуйте!\n\n"+
		"Вы скачали «%s» %s.\n"+
		"Ключ лицензии: %s\n\n"+
		"Сохраните ключ: по нему можно подтвердить право использования ассета.",
		event.Title, event.IssuedAt.UTC().Format(time.RFC1123), event.LicenseKey)

	return s.send(op, event.Email, subject, text)
}

// SubscriptionChanged сообщает о новом статусе подписки.
func (s *Service) SubscriptionChanged(_ context.Context, body []byte) error {
	const op = "sender.SubscriptionChanged"
	var event models.SubscriptionChangedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if event.Email == "" {
		s.log.Warn("subscription event without email", slog.String("op", op), slog.String("user_id", event.UserID))
		return nil
	}

	subject, text := subscriptionMessage(event.Status)
	return s.send(op, event.Email, subject, text)
}

func subscriptionMessage(status models.SubStatus) (string, string) {
	switch status {
	case models.SubActive:
		return "Подписка активна", "Здравствуйте!\n\nВаша подписка активна, скачивание ассетов доступно."
	case models.SubPastDue:
		return "Не удалось списать оплату",
			"Здравствуйте!\n\nПоследний платёж не прошёл. Обновите способ оплаты, чтобы сохранить доступ к скачиванию."
	case models.SubCanceled:
		return "Подписка отменена", "Здравствуйте!\n\nВаша подписка отменена. Выданные лицензии остаются действительными."
	default:
		return "Статус подписки изменён", "Здравствуйте!\n\nСтатус вашей подписки: " + string(status) + "."
	}
}

func (s *Service) send(op, to, subject, text string) error {
	if err := smtp.Send(s.dialer, []string{to}, subject, text); err != nil {
		s.log.Error("failed to send email", slog.String("op", op), slog.String("to", to), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent", slog.String("op", op), slog.String("to", to))
	return nil
}
