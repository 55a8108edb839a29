// Package cache хранит в Redis отметки об обработанных событиях платёжного провайдера.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/asset-marketplace/internal/config"
)

const processedPrefix = "payment:event:"

// Cache — обёртка над клиентом Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.Redis) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		Username:     cfg.RedisUser,
		MaxRetries:   cfg.RedisMaxRetries,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisTimeout,
		WriteTimeout: cfg.RedisTimeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// IsProcessed сообщает, было ли событие уже успешно применено.
func (c *Cache) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	const op = "cache.IsProcessed"
	_, err := c.Db.Get(ctx, processedPrefix+eventID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// MarkProcessed отмечает событие как применённое на ttl.
func (c *Cache) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	const op = "cache.MarkProcessed"
	if err := c.Db.Set(ctx, processedPrefix+eventID, time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение.
func (c *Cache) Close() error {
	return c.Db.Close()
}
