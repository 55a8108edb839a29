package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// InsertLicense сохраняет лицензию. Повтор ключа лицензии или пары
// (пользователь, ключ идемпотентности) возвращает models.ErrConflict.
func (s *Storage) InsertLicense(ctx context.Context, lic *models.License) (*models.License, error) {
	const op = "storage.InsertLicense"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var idem sql.NullString
	if lic.IdempotencyKey != "" {
		idem = sql.NullString{String: lic.IdempotencyKey, Valid: true}
	}

	out := *lic
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO licenses (asset_id, user_id, license_key, idempotency_key, issued_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, issued_at`,
		lic.AssetID, lic.UserID, lic.LicenseKey, idem, lic.IssuedAt).Scan(&out.ID, &out.IssuedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// FindLicenseByIdempotencyKey возвращает лицензию, ранее выданную пользователю с тем же ключом.
func (s *Storage) FindLicenseByIdempotencyKey(ctx context.Context, userID, idempotencyKey string) (*models.License, error) {
	const op = "storage.FindLicenseByIdempotencyKey"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validUUID(userID) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrLicenseNotFound)
	}

	lic := &models.License{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, asset_id, user_id, license_key, idempotency_key, issued_at
		 FROM licenses WHERE user_id = $1 AND idempotency_key = $2`, userID, idempotencyKey).
		Scan(&lic.ID, &lic.AssetID, &lic.UserID, &lic.LicenseKey, &lic.IdempotencyKey, &lic.IssuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrLicenseNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lic, nil
}

// GetLicenseInfo возвращает сведения о лицензии только для пары (ключ, пользователь),
// которой она была выдана.
func (s *Storage) GetLicenseInfo(ctx context.Context, licenseKey, userID string) (*models.LicenseInfo, error) {
	const op = "storage.GetLicenseInfo"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validUUID(userID) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrLicenseNotFound)
	}

	info := &models.LicenseInfo{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT l.asset_id, a.title, l.issued_at
		 FROM licenses l JOIN assets a ON a.id = l.asset_id
		 WHERE l.license_key = $1 AND l.user_id = $2`, licenseKey, userID).
		Scan(&info.AssetID, &info.Title, &info.IssuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrLicenseNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return info, nil
}
