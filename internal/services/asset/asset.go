// Package asset — каталог ассетов: загрузка авторами, модерация, выдача списка.
package asset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/segmentio/ksuid"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/auth"
)

// Границы пагинации каталога.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store — операции хранилища над ассетами.
type Store interface {
	CreateAsset(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	ListApprovedAssets(ctx context.Context, filter models.AssetFilter) ([]*models.Asset, int, error)
	UpdateAssetStatus(ctx context.Context, id string, status models.AssetStatus) error
}

// Uploader кладёт файл ассета в объектное хранилище.
type Uploader interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Upload — загружаемый ассет.
type Upload struct {
	Title       string
	Description string
	Type        string
	Tags        string
	ThumbURL    string
	FileName    string
	ContentType string
	Size        int64
	File        io.Reader
}

// ListParams — параметры страницы каталога, page с единицы.
type ListParams struct {
	Query string
	Type  string
	Page  int
	Limit int
}

// Service управляет каталогом.
type Service struct {
	store    Store
	uploader Uploader
	policy   *bluemonday.Policy
	log      *slog.Logger
}

// NewService создаёт Service.
func NewService(store Store, uploader Uploader, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		uploader: uploader,
		policy:   bluemonday.StrictPolicy(),
		log:      log,
	}
}

// Create загружает файл и создаёт ассет. Ассет администратора сразу одобрен,
// ассет автора ждёт модерации.
func (s *Service) Create(ctx context.Context, p models.Principal, in Upload) (*models.Asset, error) {
	const op = "asset.Create"
	if err := auth.Authorize(p, models.RoleContributor, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	title := s.clean(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%s: %w: title is required", op, models.ErrValidation)
	}
	if in.File == nil {
		return nil, fmt.Errorf("%s: %w: file is required", op, models.ErrValidation)
	}

	key := ObjectKey(in.FileName)
	if err := s.uploader.Put(ctx, key, in.File, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := models.AssetPending
	if p.Role == models.RoleAdmin {
		status = models.AssetApproved
	}
	a, err := s.store.CreateAsset(ctx, &models.Asset{
		Title:       title,
		Description: s.clean(in.Description),
		Type:        s.clean(in.Type),
		Tags:        s.clean(in.Tags),
		ThumbURL:    strings.TrimSpace(in.ThumbURL),
		AuthorID:    p.UserID,
		ObjectKey:   key,
		Status:      status,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("asset created", slog.String("op", op), slog.String("asset_id", a.ID),
		slog.String("author_id", p.UserID), slog.String("status", string(a.Status)))
	return a, nil
}

// ObjectKey строит ключ объекта вида assets/<ksuid>-<имя файла>.
func ObjectKey(fileName string) string {
	name := unsafeFileChars.ReplaceAllString(path.Base(strings.ReplaceAll(fileName, `\`, "/")), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return "assets/" + ksuid.New().String() + "-" + name
}

func (s *Service) clean(v string) string {
	return strings.TrimSpace(s.policy.Sanitize(v))
}

// List возвращает страницу одобренных ассетов.
func (s *Service) List(ctx context.Context, params ListParams) (*models.AssetPage, error) {
	const op = "asset.List"
	page := max(params.Page, 1)
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	items, total, err := s.store.ListApprovedAssets(ctx, models.AssetFilter{
		Query:  strings.TrimSpace(params.Query),
		Type:   strings.TrimSpace(params.Type),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AssetPage{
		Items: items,
		Total: total,
		Page:  page,
		Pages: (total + limit - 1) / limit,
	}, nil
}

// Get возвращает ассет. Неодобренный ассет видят только администратор и автор,
// остальным он неотличим от несуществующего.
func (s *Service) Get(ctx context.Context, p *models.Principal, id string) (*models.Asset, error) {
	const op = "asset.Get"
	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.Status == models.AssetApproved {
		return a, nil
	}
	if p != nil && (p.Role == models.RoleAdmin || p.UserID == a.AuthorID) {
		return a, nil
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
}

// Moderate меняет статус модерации. Только для администратора.
func (s *Service) Moderate(ctx context.Context, p models.Principal, id string, status models.AssetStatus) (*models.Asset, error) {
	const op = "asset.Moderate"
	if err := auth.Authorize(p, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown status %q", op, models.ErrValidation, status)
	}
	if err := s.store.UpdateAssetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("asset moderated", slog.String("op", op), slog.String("asset_id", id),
		slog.String("admin_id", p.UserID), slog.String("status", string(status)))
	return a, nil
}
