package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/asset-marketplace/internal/migrations"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))
	return storage
}

// TestDataFactory создаёт тестовые записи через публичные методы Storage.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

func (f *TestDataFactory) CreateUser(t *testing.T, email string, role models.Role, status models.SubStatus) *models.User {
	t.Helper()
	u, err := f.storage.CreateUser(context.Background(), &models.User{
		Email:              email,
		Name:               "Test",
		PasswordHash:       "hashedpassword",
		Role:               role,
		SubscriptionStatus: status,
	})
	require.NoError(t, err)
	return u
}

func (f *TestDataFactory) CreateAsset(t *testing.T, authorID, title string, status models.AssetStatus) *models.Asset {
	t.Helper()
	a, err := f.storage.CreateAsset(context.Background(), &models.Asset{
		Title:     title,
		Type:      "model",
		Tags:      "low-poly,game",
		AuthorID:  authorID,
		ObjectKey: "assets/" + title,
		Status:    status,
	})
	require.NoError(t, err)
	return a
}
