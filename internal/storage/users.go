package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

const userColumns = `id, email, name, password_hash, role, subscription_status, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.SubscriptionStatus, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя. Повтор email возвращает models.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (email, name, password_hash, role, subscription_status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + userColumns
	created, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.Email, user.Name, user.PasswordHash, string(user.Role), string(user.SubscriptionStatus)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUserByID возвращает пользователя по id.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validUUID(id) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateUserStatus меняет статус подписки. Последняя запись побеждает.
func (s *Storage) UpdateUserStatus(ctx context.Context, id string, status models.SubStatus) error {
	const op = "storage.UpdateUserStatus"
	return s.updateUserField(ctx, op, `UPDATE users SET subscription_status = $1 WHERE id = $2`, string(status), id)
}

// UpdateUserRole меняет роль пользователя.
func (s *Storage) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	const op = "storage.UpdateUserRole"
	return s.updateUserField(ctx, op, `UPDATE users SET role = $1 WHERE id = $2`, string(role), id)
}

func (s *Storage) updateUserField(ctx context.Context, op, query, value, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validUUID(id) {
		return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}

	result, err := s.DB.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	return nil
}
