package models

import "time"

// License — неизменяемая запись о выдаче ассета пользователю.
// Существование записи доказывает, что на момент выдачи у пользователя
// была активная подписка и валидная аутентификация.
type License struct {
	ID             string
	AssetID        string
	UserID         string
	LicenseKey     string
	IdempotencyKey string // пустая строка, если клиент ключ не передал
	IssuedAt       time.Time
}

// LicenseInfo — результат проверки лицензии.
type LicenseInfo struct {
	AssetID  string    `json:"asset_id"`
	Title    string    `json:"title"`
	IssuedAt time.Time `json:"issued_at"`
}

// IssuedLicense — то, что получает клиент после успешной покупки скачивания.
type IssuedLicense struct {
	LicenseKey string    `json:"license_key"`
	FileURL    string    `json:"file_url"`
	Title      string    `json:"title"`
	ExpiresAt  time.Time `json:"expires_at"`
}
