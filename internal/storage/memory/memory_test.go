package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

func TestStore_UserUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, &models.User{Email: "a@example.com", Role: models.RoleUser})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = s.CreateUser(ctx, &models.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, models.ErrConflict)

	// возвращаются копии
	u.Role = models.RoleAdmin
	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, got.Role)
}

func TestStore_ListApprovedAssets(t *testing.T) {
	s := New()
	ctx := context.Background()
	author, err := s.CreateUser(ctx, &models.User{Email: "c@example.com", Role: models.RoleContributor})
	require.NoError(t, err)

	for _, a := range []models.Asset{
		{Title: "Robot", Tags: "scifi", Type: "model", Status: models.AssetApproved},
		{Title: "Tree", Tags: "nature", Type: "model", Status: models.AssetApproved},
		{Title: "Sky", Tags: "nature", Type: "texture", Status: models.AssetApproved},
		{Title: "Hidden", Tags: "nature", Type: "model", Status: models.AssetPending},
	} {
		a.AuthorID = author.ID
		_, err := s.CreateAsset(ctx, &a)
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		filter    models.AssetFilter
		wantTotal int
		wantLen   int
	}{
		{name: "all approved", filter: models.AssetFilter{Limit: 10}, wantTotal: 3, wantLen: 3},
		{name: "by tag", filter: models.AssetFilter{Query: "NATURE", Limit: 10}, wantTotal: 2, wantLen: 2},
		{name: "by type", filter: models.AssetFilter{Type: "texture", Limit: 10}, wantTotal: 1, wantLen: 1},
		{name: "paged", filter: models.AssetFilter{Limit: 2, Offset: 2}, wantTotal: 3, wantLen: 1},
		{name: "wildcards match literally", filter: models.AssetFilter{Query: "_", Limit: 10}, wantTotal: 0, wantLen: 0},
		{name: "offset past end", filter: models.AssetFilter{Limit: 2, Offset: 10}, wantTotal: 3, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := s.ListApprovedAssets(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Len(t, items, tt.wantLen)
		})
	}
}

func TestStore_Licenses(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, err := s.CreateUser(ctx, &models.User{Email: "u@example.com"})
	require.NoError(t, err)
	asset, err := s.CreateAsset(ctx, &models.Asset{Title: "Robot", AuthorID: user.ID, Status: models.AssetApproved})
	require.NoError(t, err)

	_, err = s.InsertLicense(ctx, &models.License{AssetID: asset.ID, UserID: user.ID, LicenseKey: "k1", IdempotencyKey: "i1"})
	require.NoError(t, err)
	_, err = s.InsertLicense(ctx, &models.License{AssetID: asset.ID, UserID: user.ID, LicenseKey: "k2", IdempotencyKey: "i1"})
	assert.ErrorIs(t, err, models.ErrConflict)
	_, err = s.InsertLicense(ctx, &models.License{AssetID: asset.ID, UserID: user.ID, LicenseKey: "k1"})
	assert.ErrorIs(t, err, models.ErrConflict)

	info, err := s.GetLicenseInfo(ctx, "k1", user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Robot", info.Title)

	_, err = s.GetLicenseInfo(ctx, "k1", "someone-else")
	assert.ErrorIs(t, err, models.ErrLicenseNotFound)
	assert.Equal(t, 1, s.LicenseCount())
}
