// Package paymentprovider — интеграция со Stripe: проверка подписи вебхуков
// и создание hosted checkout для единственного тарифа подписки.
package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/magabrotheeeer/asset-marketplace/internal/config"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Tolerance — допустимый возраст подписи вебхука.
const Tolerance = 5 * time.Minute

// Verifier проверяет подпись Stripe-Signature над сырыми байтами запроса.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

// NewVerifier создаёт Verifier с общим секретом вебхука.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret, tolerance: Tolerance}
}

// Verify проверяет подпись и разбирает событие. Любая ошибка подписи
// или формата оборачивает models.ErrSignatureInvalid.
func (v *Verifier) Verify(payload []byte, header string) (*Event, error) {
	const op = "paymentprovider.Verify"
	if v.secret == "" {
		return nil, fmt.Errorf("%s: %w: webhook secret is not configured", op, models.ErrSignatureInvalid)
	}
	raw, err := webhook.ConstructEventWithOptions(payload, header, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrSignatureInvalid, err)
	}
	event, err := decodeEvent(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrSignatureInvalid, err)
	}
	return event, nil
}

func decodeEvent(raw stripe.Event) (*Event, error) {
	event := &Event{ID: raw.ID, Type: string(raw.Type)}
	if raw.Data == nil {
		return nil, errors.New("event without data")
	}
	switch event.Type {
	case EventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(raw.Data.Raw, &s); err != nil {
			return nil, err
		}
		event.ClientReferenceID = s.ClientReferenceID
		event.Email = s.CustomerEmail
		if event.Email == "" && s.CustomerDetails != nil {
			event.Email = s.CustomerDetails.Email
		}
		if s.Customer != nil {
			event.CustomerID = s.Customer.ID
		}
	case EventSubscriptionDeleted, EventSubscriptionUpdated:
		var s stripe.Subscription
		if err := json.Unmarshal(raw.Data.Raw, &s); err != nil {
			return nil, err
		}
		event.SubscriptionStatus = string(s.Status)
		if s.Customer != nil {
			event.CustomerID = s.Customer.ID
			event.Email = s.Customer.Email
		}
	case EventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(raw.Data.Raw, &inv); err != nil {
			return nil, err
		}
		event.Email = inv.CustomerEmail
		if inv.Customer != nil {
			event.CustomerID = inv.Customer.ID
		}
	}
	return event, nil
}

// Client создаёт checkout-сессии через API Stripe.
type Client struct {
	api        *client.API
	priceID    string
	successURL string
	cancelURL  string
}

// NewClient создаёт клиент по секции stripe конфига.
func NewClient(cfg config.Stripe) *Client {
	return &Client{
		api:        client.New(cfg.StripeSecretKey, nil),
		priceID:    cfg.StripePriceID,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
}

// CreateCheckout возвращает URL hosted checkout для подписки.
// Id пользователя уходит в client_reference_id и возвращается в вебхуке.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	const op = "paymentprovider.CreateCheckout"
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail:     stripe.String(req.Email),
		ClientReferenceID: stripe.String(req.UserID),
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(c.priceID), Quantity: stripe.Int64(1)},
		},
	}
	params.Context = ctx
	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.URL, nil
}
