// Package objectstore — хранилище файлов ассетов в S3/MinIO и выдача подписанных ссылок.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/magabrotheeeer/asset-marketplace/internal/config"
)

// MaxURLTTL — предел срока жизни presigned ссылки в S3.
const MaxURLTTL = 7 * 24 * time.Hour

// Store — бакет с ассетами.
type Store struct {
	client *minio.Client
	bucket string
	region string
}

// New создаёт клиента. Регион задаётся явно, поэтому подпись ссылок
// не требует обращения к серверу.
func New(cfg config.S3) (*Store, error) {
	const op = "objectstore.New"
	endpoint, secure := cfg.S3Endpoint, cfg.S3UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = strings.TrimPrefix(endpoint, "http://")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: secure,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{client: client, bucket: cfg.S3Bucket, region: cfg.S3Region}, nil
}

// EnsureBucket создаёт бакет, если его нет.
func (s *Store) EnsureBucket(ctx context.Context) error {
	const op = "objectstore.EnsureBucket"
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Put загружает объект под ключом key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	const op = "objectstore.Put"
	if key == "" {
		return fmt.Errorf("%s: empty object key", op)
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Sign возвращает presigned GET ссылку ровно на один объект, действующую ttl.
// Учётные данные хранилища клиенту не передаются.
func (s *Store) Sign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	const op = "objectstore.Sign"
	if key == "" {
		return "", fmt.Errorf("%s: empty object key", op)
	}
	if ttl <= 0 || ttl > MaxURLTTL {
		return "", fmt.Errorf("%s: ttl %s out of range", op, ttl)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return u.String(), nil
}
