// Package models содержит доменные структуры маркетплейса: пользователей,
// ассеты, лицензии, а также перечисления ролей и статусов подписки.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import (
	"strings"
	"time"
)

// Role — роль пользователя в системе.
type Role string

const (
	// RoleUser — обычный покупатель.
	RoleUser Role = "USER"
	// RoleContributor — автор, который может загружать ассеты.
	RoleContributor Role = "CONTRIBUTOR"
	// RoleAdmin — администратор (модерация, ручное управление подписками).
	RoleAdmin Role = "ADMIN"
)

// Valid сообщает, является ли значение известной ролью.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleContributor, RoleAdmin:
		return true
	}
	return false
}

// SubStatus — статус подписки пользователя.
type SubStatus string

const (
	SubActive   SubStatus = "ACTIVE"
	SubInactive SubStatus = "INACTIVE"
	SubCanceled SubStatus = "CANCELED"
	SubPastDue  SubStatus = "PAST_DUE"
)

// Valid сообщает, является ли значение известным статусом подписки.
func (s SubStatus) Valid() bool {
	switch s {
	case SubActive, SubInactive, SubCanceled, SubPastDue:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID                 string    `json:"id"`    // Уникальный идентификатор пользователя (uuid)
	Email              string    `json:"email"` // Электронная почта, уникальна
	Name               string    `json:"name,omitempty"`
	PasswordHash       string    `json:"-"`
	Role               Role      `json:"role"`
	SubscriptionStatus SubStatus `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
}

// Principal — аутентифицированный субъект запроса, восстановленный из access‑токена.
type Principal struct {
	UserID string
	Role   Role
	Email  string
}

// NormalizeEmail приводит email к виду, в котором он хранится: без пробелов по краям, в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
