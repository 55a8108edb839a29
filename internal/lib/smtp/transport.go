package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/magabrotheeeer/asset-marketplace/internal/config"
	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
)

// Transport открывает SMTP‑сессии по настройкам config.SMTP.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

type clientWrapper struct {
	client *smtp.Client
}

func (w *clientWrapper) Mail(from string) error        { return w.client.Mail(from) }
func (w *clientWrapper) Rcpt(to string) error          { return w.client.Rcpt(to) }
func (w *clientWrapper) Data() (io.WriteCloser, error) { return w.client.Data() }
func (w *clientWrapper) Quit() error                   { return w.client.Quit() }
func (w *clientWrapper) Close() error                  { return w.client.Close() }

// NewTransport создаёт Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect подключается к серверу, поднимает STARTTLS и проходит PLAIN‑аутентификацию.
// Сервер без STARTTLS отвергается: пароль не уходит в открытом виде.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			t.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: new client: %w", op, err)
	}

	fail := func(err error) (Client, error) {
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fail(fmt.Errorf("server does not support STARTTLS"))
	}
	if err := client.StartTLS(&tls.Config{ServerName: t.cfg.SMTPHost, MinVersion: tls.VersionTLS12}); err != nil {
		return fail(fmt.Errorf("start tls: %w", err))
	}
	if t.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fail(fmt.Errorf("auth: %w", err))
		}
	}
	return &clientWrapper{client: client}, nil
}

// From возвращает адрес отправителя.
func (t *Transport) From() string {
	return t.cfg.SMTPUser
}

// Send отправляет текстовое письмо одному или нескольким получателям.
func Send(d Dialer, to []string, subject, body string) error {
	const op = "smtp.Send"
	msg := strings.Join([]string{
		"From: " + d.From(),
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	client, err := d.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err := client.Mail(d.From()); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: rcpt %s: %w", op, addr, err)
		}
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}
