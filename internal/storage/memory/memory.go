// Package memory — хранилище в памяти с тем же контрактом, что и storage.Storage.
// Используется в тестах сервисов и HTTP‑слоя.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Store хранит данные в map под одним мьютексом. Методы возвращают копии.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*models.User
	customers map[string]string // customer_id -> user_id
	assets    map[string]*models.Asset
	licenses  map[string]*models.License // license_key -> license
	now       func() time.Time
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		users:     make(map[string]*models.User),
		customers: make(map[string]string),
		assets:    make(map[string]*models.Asset),
		licenses:  make(map[string]*models.License),
		now:       time.Now,
	}
}

// Ping всегда успешен.
func (s *Store) Ping(_ context.Context) error { return nil }

// CreateUser сохраняет пользователя, email уникален.
func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "memory.CreateUser"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
		}
	}
	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = &u
	out := u
	return &out, nil
}

// GetUserByID возвращает пользователя по id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "memory.GetUserByID"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	out := *u
	return &out, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "memory.GetUserByEmail"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
}

// UpdateUserStatus меняет статус подписки.
func (s *Store) UpdateUserStatus(ctx context.Context, id string, status models.SubStatus) error {
	return s.updateUser(ctx, "memory.UpdateUserStatus", id, func(u *models.User) { u.SubscriptionStatus = status })
}

// UpdateUserRole меняет роль.
func (s *Store) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	return s.updateUser(ctx, "memory.UpdateUserRole", id, func(u *models.User) { u.Role = role })
}

func (s *Store) updateUser(ctx context.Context, op, id string, apply func(*models.User)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	apply(u)
	return nil
}

// LinkCustomer привязывает покупателя провайдера к пользователю, заменяя старые привязки.
func (s *Store) LinkCustomer(ctx context.Context, customerID, userID string) error {
	const op = "memory.LinkCustomer"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	for c, u := range s.customers {
		if u == userID {
			delete(s.customers, c)
		}
	}
	s.customers[customerID] = userID
	return nil
}

// GetUserIDByCustomer возвращает id пользователя по покупателю провайдера.
func (s *Store) GetUserIDByCustomer(ctx context.Context, customerID string) (string, error) {
	const op = "memory.GetUserIDByCustomer"
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.customers[customerID]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	return id, nil
}

// CreateAsset сохраняет ассет.
func (s *Store) CreateAsset(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	const op = "memory.CreateAsset"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[asset.AuthorID]; !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	a := *asset
	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC()
	a.Downloads = 0
	s.assets[a.ID] = &a
	out := a
	return &out, nil
}

// GetAsset возвращает ассет в любом статусе.
func (s *Store) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	const op = "memory.GetAsset"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
	}
	out := *a
	return &out, nil
}

// FindApprovedAsset возвращает только одобренный ассет.
func (s *Store) FindApprovedAsset(ctx context.Context, id string) (*models.Asset, error) {
	const op = "memory.FindApprovedAsset"
	a, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.Status != models.AssetApproved {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
	}
	return a, nil
}

// ListApprovedAssets фильтрует одобренные ассеты и возвращает страницу.
func (s *Store) ListApprovedAssets(ctx context.Context, filter models.AssetFilter) ([]*models.Asset, int, error) {
	const op = "memory.ListApprovedAssets"
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	q := strings.ToLower(filter.Query)
	matched := make([]*models.Asset, 0)
	for _, a := range s.assets {
		if a.Status != models.AssetApproved {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Title), q) && !strings.Contains(strings.ToLower(a.Tags), q) {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		out := *a
		matched = append(matched, &out)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	if filter.Offset >= total {
		return []*models.Asset{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

// UpdateAssetStatus меняет статус модерации.
func (s *Store) UpdateAssetStatus(ctx context.Context, id string, status models.AssetStatus) error {
	return s.updateAsset(ctx, "memory.UpdateAssetStatus", id, func(a *models.Asset) { a.Status = status })
}

// IncrementDownloads увеличивает счётчик скачиваний.
func (s *Store) IncrementDownloads(ctx context.Context, id string) error {
	return s.updateAsset(ctx, "memory.IncrementDownloads", id, func(a *models.Asset) { a.Downloads++ })
}

func (s *Store) updateAsset(ctx context.Context, op, id string, apply func(*models.Asset)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
	}
	apply(a)
	return nil
}

// InsertLicense сохраняет лицензию с проверкой уникальности ключа и ключа идемпотентности.
func (s *Store) InsertLicense(ctx context.Context, lic *models.License) (*models.License, error) {
	const op = "memory.InsertLicense"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[lic.AssetID]; !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
	}
	if _, ok := s.licenses[lic.LicenseKey]; ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
	}
	if lic.IdempotencyKey != "" {
		for _, l := range s.licenses {
			if l.UserID == lic.UserID && l.IdempotencyKey == lic.IdempotencyKey {
				return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
			}
		}
	}
	l := *lic
	l.ID = uuid.NewString()
	if l.IssuedAt.IsZero() {
		l.IssuedAt = s.now().UTC()
	}
	s.licenses[l.LicenseKey] = &l
	out := l
	return &out, nil
}

// FindLicenseByIdempotencyKey ищет лицензию пользователя по ключу идемпотентности.
func (s *Store) FindLicenseByIdempotencyKey(ctx context.Context, userID, idempotencyKey string) (*models.License, error) {
	const op = "memory.FindLicenseByIdempotencyKey"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.licenses {
		if l.UserID == userID && l.IdempotencyKey != "" && l.IdempotencyKey == idempotencyKey {
			out := *l
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrLicenseNotFound)
}

// GetLicenseInfo возвращает сведения о лицензии для точной пары (ключ, пользователь).
func (s *Store) GetLicenseInfo(ctx context.Context, licenseKey, userID string) (*models.LicenseInfo, error) {
	const op = "memory.GetLicenseInfo"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.licenses[licenseKey]
	if !ok || l.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrLicenseNotFound)
	}
	title := ""
	if a, ok := s.assets[l.AssetID]; ok {
		title = a.Title
	}
	return &models.LicenseInfo{AssetID: l.AssetID, Title: title, IssuedAt: l.IssuedAt}, nil
}

// LicenseCount возвращает число выданных лицензий.
func (s *Store) LicenseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.licenses)
}
