package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-marketplace/internal/lib/logger"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/asset"
	"github.com/magabrotheeeer/asset-marketplace/internal/services/entitlement"
	"github.com/magabrotheeeer/asset-marketplace/internal/storage/memory"
)

type fakeMigrator struct {
	up    int
	downs []int
	err   error
}

func (m *fakeMigrator) Up() error {
	m.up++
	return m.err
}

func (m *fakeMigrator) Down(steps int) error {
	m.downs = append(m.downs, steps)
	return m.err
}

type fixture struct {
	store    *memory.Store
	migrator *fakeMigrator
	opened   int
	closed   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{store: memory.New(), migrator: &fakeMigrator{}}
}

func (f *fixture) open(_ context.Context) (*Env, func(), error) {
	f.opened++
	log := logger.Discard()
	return &Env{
		Users:        f.store,
		Entitlements: entitlement.NewService(f.store, nil, nil, log),
		Assets:       asset.NewService(f.store, nil, log),
		Migrator:     f.migrator,
	}, func() { f.closed++ }, nil
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(f.open)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.store.CreateUser(context.Background(), &models.User{
		Email:              email,
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubInactive,
	})
	require.NoError(t, err)
	return u
}

func TestMigrate(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "migrations applied\n", out)
	assert.Equal(t, 1, f.migrator.up)

	out, err = f.run(t, "migrate", "down", "--steps", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "rolled back 2")
	assert.Equal(t, []int{2}, f.migrator.downs)
	assert.Equal(t, f.opened, f.closed)
}

func TestMigrateDownRejectsNonPositiveSteps(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "migrate", "down", "--steps", "0")
	require.Error(t, err)
	assert.Zero(t, f.opened)
}

func TestMigrateError(t *testing.T) {
	f := newFixture(t)
	f.migrator.err = errors.New("dirty database")

	_, err := f.run(t, "migrate")
	require.Error(t, err)
	assert.Equal(t, 1, f.closed)
}

func TestUserPromote(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "author@example.com")

	out, err := f.run(t, "user", "promote", "--email", " Author@Example.com ", "--role", "contributor")
	require.NoError(t, err)
	assert.Equal(t, "user author@example.com: role=CONTRIBUTOR\n", out)

	got, err := f.store.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleContributor, got.Role)
}

func TestUserPromoteUnknownRole(t *testing.T) {
	f := newFixture(t)
	f.user(t, "a@example.com")

	_, err := f.run(t, "user", "promote", "--email", "a@example.com", "--role", "owner")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestUserSetStatus(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com")

	out, err := f.run(t, "user", "set-status", "--email", "buyer@example.com", "--status", "ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, "user buyer@example.com: subscription_status=ACTIVE\n", out)

	got, err := f.store.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubActive, got.SubscriptionStatus)
}

func TestUserSetStatusUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "user", "set-status", "--email", "ghost@example.com", "--status", "ACTIVE")
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestUserCommandsRequireFlags(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "user", "promote", "--email", "a@example.com")
	require.Error(t, err)
	_, err = f.run(t, "user", "set-status", "--status", "ACTIVE")
	require.Error(t, err)
	assert.Zero(t, f.opened)
}

func TestAssetModerate(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author@example.com")
	a, err := f.store.CreateAsset(context.Background(), &models.Asset{
		Title:     "Pack",
		AuthorID:  author.ID,
		ObjectKey: "assets/pack.zip",
		Status:    models.AssetPending,
	})
	require.NoError(t, err)

	out, err := f.run(t, "asset", "moderate", "--id", a.ID, "--status", "approved")
	require.NoError(t, err)
	assert.Equal(t, "asset "+a.ID+": status=APPROVED\n", out)

	_, err = f.store.FindApprovedAsset(context.Background(), a.ID)
	require.NoError(t, err)
}

func TestAssetModerateUnknownAsset(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "asset", "moderate", "--id", "missing", "--status", "APPROVED")
	require.ErrorIs(t, err, models.ErrAssetNotFound)
}
