package models

import "errors"

// Доменные ошибки. Слои выше сравнивают их через errors.Is и переводят
// в HTTP/gRPC статусы на границе.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
	ErrNotEntitled        = errors.New("active subscription required")
	// ErrAssetNotFound покрывает и несуществующие, и неодобренные ассеты.
	ErrAssetNotFound    = errors.New("asset not found")
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	ErrConflict         = errors.New("already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrLicenseNotFound  = errors.New("license not found")
	ErrValidation       = errors.New("validation failed")
)
