package models

import "time"

// Ключи маршрутизации доменных событий в RabbitMQ.
const (
	EventLicenseIssued       = "license.issued"
	EventSubscriptionChanged = "subscription.changed"
)

// LicenseIssuedEvent публикуется после записи лицензии.
type LicenseIssuedEvent struct {
	LicenseID  string    `json:"license_id"`
	LicenseKey string    `json:"license_key"`
	AssetID    string    `json:"asset_id"`
	Title      string    `json:"title"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	IssuedAt   time.Time `json:"issued_at"`
}

// SubscriptionChangedEvent публикуется после смены статуса подписки.
type SubscriptionChangedEvent struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Status SubStatus `json:"status"`
	Source string    `json:"source"` // "payment" или "admin"
}
