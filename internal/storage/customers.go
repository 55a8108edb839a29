package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// LinkCustomer сохраняет соответствие покупателя платёжного провайдера пользователю.
// Старые привязки того же покупателя или того же пользователя заменяются.
func (s *Storage) LinkCustomer(ctx context.Context, customerID, userID string) error {
	const op = "storage.LinkCustomer"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validUUID(userID) {
		return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM payment_customers WHERE customer_id = $1 OR user_id = $2`, customerID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO payment_customers (customer_id, user_id) VALUES ($1, $2)`, customerID, userID); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserIDByCustomer возвращает id пользователя, привязанного к покупателю.
func (s *Storage) GetUserIDByCustomer(ctx context.Context, customerID string) (string, error) {
	const op = "storage.GetUserIDByCustomer"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var userID string
	err := s.DB.QueryRowContext(ctx,
		`SELECT user_id FROM payment_customers WHERE customer_id = $1`, customerID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userID, nil
}
