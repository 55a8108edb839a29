// Package license выдаёт лицензии на скачивание ассетов и проверяет их.
// Выдача требует активной подписки, прочитанной из хранилища в момент запроса,
// и одобренного ассета. Клиент получает ключ лицензии и короткоживущую
// подписанную ссылку, ключ объекта в хранилище наружу не отдаётся.
package license

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/asset-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/asset-marketplace/internal/metrics"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/auth"
)

// DefaultURLTTL — срок действия ссылки на скачивание.
const DefaultURLTTL = 5 * time.Minute

// Store — операции хранилища, нужные выдаче лицензий.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	FindApprovedAsset(ctx context.Context, id string) (*models.Asset, error)
	IncrementDownloads(ctx context.Context, id string) error
	InsertLicense(ctx context.Context, lic *models.License) (*models.License, error)
	FindLicenseByIdempotencyKey(ctx context.Context, userID, idempotencyKey string) (*models.License, error)
	GetLicenseInfo(ctx context.Context, licenseKey, userID string) (*models.LicenseInfo, error)
}

// URLSigner выдаёт ссылку на один объект хранилища с ограниченным сроком.
type URLSigner interface {
	Sign(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// KeyGenerator строит ключ лицензии.
type KeyGenerator interface {
	Generate(assetID, userID string, issuedAt time.Time) string
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Service выдаёт и проверяет лицензии.
type Service struct {
	store   Store
	signer  URLSigner
	keys    KeyGenerator
	pub     EventPublisher
	metrics metrics.Recorder
	log     *slog.Logger
	ttl     time.Duration
	now     func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithURLTTL задаёт срок действия ссылки.
func WithURLTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher включает публикацию license.issued.
func WithPublisher(pub EventPublisher) Option {
	return func(s *Service) { s.pub = pub }
}

// WithMetrics включает учёт выданных лицензий.
func WithMetrics(rec metrics.Recorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// NewService создаёт Service.
func NewService(store Store, signer URLSigner, keys KeyGenerator, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		signer:  signer,
		keys:    keys,
		metrics: metrics.Nop{},
		log:     log,
		ttl:     DefaultURLTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueLicense выдаёт лицензию на ассет.
//
// Ошибки: models.ErrNotEntitled, если подписка не ACTIVE; models.ErrAssetNotFound,
// если ассета нет или он не одобрен. В обоих случаях ни лицензия, ни счётчик
// скачиваний не меняются. Повтор с тем же idempotencyKey возвращает ту же
// лицензию со свежей ссылкой, без второй записи и второго инкремента.
func (s *Service) IssueLicense(ctx context.Context, p models.Principal, assetID, idempotencyKey string) (*models.IssuedLicense, error) {
	const op = "license.IssueLicense"
	log := s.log.With(slog.String("op", op), slog.String("user_id", p.UserID), slog.String("asset_id", assetID))

	if err := auth.Authorize(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.store.GetUserByID(ctx, p.UserID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.SubscriptionStatus != models.SubActive {
		log.Info("download denied", slog.String("status", string(user.SubscriptionStatus)))
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotEntitled)
	}
	asset, err := s.store.FindApprovedAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if idempotencyKey != "" {
		prev, err := s.replay(ctx, user.ID, asset, idempotencyKey)
		if err == nil {
			log.Info("license replayed", slog.String("license_id", prev.ID))
			return s.issued(ctx, op, prev, asset)
		}
		if !errors.Is(err, models.ErrLicenseNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	issuedAt := s.now().UTC()
	lic, err := s.store.InsertLicense(ctx, &models.License{
		AssetID:        asset.ID,
		UserID:         user.ID,
		LicenseKey:     s.keys.Generate(asset.ID, user.ID, issuedAt),
		IdempotencyKey: idempotencyKey,
		IssuedAt:       issuedAt,
	})
	if errors.Is(err, models.ErrConflict) && idempotencyKey != "" {
		// параллельный запрос с тем же ключом успел первым
		prev, rerr := s.replay(ctx, user.ID, asset, idempotencyKey)
		if rerr != nil {
			return nil, fmt.Errorf("%s: %w", op, rerr)
		}
		return s.issued(ctx, op, prev, asset)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.IncrementDownloads(ctx, asset.ID); err != nil {
		log.Warn("failed to increment downloads", sl.Err(err))
	}

	out, err := s.issued(ctx, op, lic, asset)
	if err != nil {
		return nil, err
	}
	s.metrics.LicenseIssued()
	s.publish(ctx, log, lic, asset, user)
	log.Info("license issued", slog.String("license_id", lic.ID))
	return out, nil
}

// replay находит лицензию по ключу идемпотентности. Ключ, использованный
// для другого ассета, даёт конфликт.
func (s *Service) replay(ctx context.Context, userID string, asset *models.Asset, key string) (*models.License, error) {
	prev, err := s.store.FindLicenseByIdempotencyKey(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if prev.AssetID != asset.ID {
		return nil, fmt.Errorf("idempotency key reused for another asset: %w", models.ErrConflict)
	}
	return prev, nil
}

func (s *Service) issued(ctx context.Context, op string, lic *models.License, asset *models.Asset) (*models.IssuedLicense, error) {
	url, err := s.signer.Sign(ctx, asset.ObjectKey, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.IssuedLicense{
		LicenseKey: lic.LicenseKey,
		FileURL:    url,
		Title:      asset.Title,
		ExpiresAt:  s.now().UTC().Add(s.ttl),
	}, nil
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, lic *models.License, asset *models.Asset, user *models.User) {
	if s.pub == nil {
		return
	}
	err := s.pub.Publish(ctx, models.EventLicenseIssued, models.LicenseIssuedEvent{
		LicenseID:  lic.ID,
		LicenseKey: lic.LicenseKey,
		AssetID:    asset.ID,
		Title:      asset.Title,
		UserID:     user.ID,
		Email:      user.Email,
		IssuedAt:   lic.IssuedAt,
	})
	if err != nil {
		log.Warn("failed to publish license.issued", sl.Err(err))
	}
}

// ValidateLicense проверяет лицензию. Ключ действителен только для того
// пользователя, которому выдан; иначе models.ErrLicenseNotFound.
func (s *Service) ValidateLicense(ctx context.Context, p models.Principal, licenseKey string) (*models.LicenseInfo, error) {
	const op = "license.ValidateLicense"
	if err := auth.Authorize(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if licenseKey == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrLicenseNotFound)
	}
	info, err := s.store.GetLicenseInfo(ctx, licenseKey, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return info, nil
}
