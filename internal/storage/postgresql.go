// Package storage реализует хранилище маркетплейса на PostgreSQL:
// пользователи, привязка покупателей платёжного провайдера, ассеты и лицензии.
// Все операции однострочные (чтение по ключу, вставка, обновление по ключу),
// уникальность обеспечивается ограничениями базы.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
// Открывается один раз при старте процесса и передаётся в сервисы.
type Storage struct {
	DB *sql.DB
}

// New открывает пул соединений и ждёт готовности базы (до ~30 секунд).
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(b, ctx)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Ping проверяет доступность базы, используется в /health.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// validUUID отсекает заведомо несуществующие идентификаторы до обращения к базе.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
