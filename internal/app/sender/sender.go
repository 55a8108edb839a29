// Package sender — процесс уведомлений: читает доменные события из RabbitMQ
// и отправляет письма.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/asset-marketplace/internal/config"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/smtp"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	senderservice "github.com/magabrotheeeer/asset-marketplace/internal/services/sender"
)

// App держит соединение с брокером и сервис отправки.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New подключается к брокеру и объявляет очереди уведомлений.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"
	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewService(transport, logger),
		logger:        logger,
	}, nil
}

// Run запускает потребителей и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	handlers := map[string]rabbitmq.Handler{
		models.EventLicenseIssued:       a.senderService.LicenseIssued,
		models.EventSubscriptionChanged: a.senderService.SubscriptionChanged,
	}
	for _, q := range rabbitmq.NotificationQueues() {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, q.QueueName, a.logger, handlers[q.RoutingKey]); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			return err
		}
		a.logger.Info("consumer started", slog.String("queue", q.QueueName))
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
