package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

const assetColumns = `id, title, description, type, tags, author_id, object_key, thumb_url, status, downloads, created_at`

func scanAsset(row interface{ Scan(...any) error }) (*models.Asset, error) {
	a := &models.Asset{}
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Type, &a.Tags, &a.AuthorID,
		&a.ObjectKey, &a.ThumbURL, &a.Status, &a.Downloads, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAsset сохраняет ассет и возвращает его с id и датой создания.
func (s *Storage) CreateAsset(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	const op = "storage.CreateAsset"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO assets (title, description, type, tags, author_id, object_key, thumb_url, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + assetColumns
	created, err := scanAsset(s.DB.QueryRowContext(ctx, query,
		asset.Title, asset.Description, asset.Type, asset.Tags, asset.AuthorID,
		asset.ObjectKey, asset.ThumbURL, string(asset.Status)))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetAsset возвращает ассет в любом статусе. Вызывающий сам решает, кому его показывать.
func (s *Storage) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	const op = "storage.GetAsset"
	return s.getAsset(ctx, op, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
}

// FindApprovedAsset возвращает ассет только в статусе APPROVED.
// Неодобренный и несуществующий ассет неразличимы: оба дают models.ErrAssetNotFound.
func (s *Storage) FindApprovedAsset(ctx context.Context, id string) (*models.Asset, error) {
	const op = "storage.FindApprovedAsset"
	return s.getAsset(ctx, op, `SELECT `+assetColumns+` FROM assets WHERE id = $1 AND status = 'APPROVED'`, id)
}

func (s *Storage) getAsset(ctx context.Context, op, query, id string) (*models.Asset, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validUUID(id) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
	}

	a, err := scanAsset(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует спецсимволы LIKE, поиск идёт по подстроке буквально.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListApprovedAssets возвращает страницу одобренных ассетов и их общее количество.
func (s *Storage) ListApprovedAssets(ctx context.Context, filter models.AssetFilter) ([]*models.Asset, int, error) {
	const op = "storage.ListApprovedAssets"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := []string{`status = 'APPROVED'`}
	args := []any{}
	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		where = append(where, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR tags ILIKE $%d ESCAPE '\')`, len(args), len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf(`type = $%d`, len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM assets WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		assetColumns, cond, len(args)-1, len(args))
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]*models.Asset, 0, filter.Limit)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return items, total, nil
}

// UpdateAssetStatus меняет статус модерации.
func (s *Storage) UpdateAssetStatus(ctx context.Context, id string, status models.AssetStatus) error {
	const op = "storage.UpdateAssetStatus"
	return s.execAsset(ctx, op, `UPDATE assets SET status = $2 WHERE id = $1`, id, string(status))
}

// IncrementDownloads увеличивает счётчик скачиваний. Точность при гонках не гарантируется.
func (s *Storage) IncrementDownloads(ctx context.Context, id string) error {
	const op = "storage.IncrementDownloads"
	return s.execAsset(ctx, op, `UPDATE assets SET downloads = downloads + 1 WHERE id = $1`, id)
}

func (s *Storage) execAsset(ctx context.Context, op, query, id string, args ...any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validUUID(id) {
		return fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
	}

	result, err := s.DB.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
	}
	return nil
}
