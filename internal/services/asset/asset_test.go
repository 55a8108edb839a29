package asset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
	"github.com/magabrotheeeer/asset-marketplace/internal/storage/memory"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, r, size, contentType)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

type fixture struct {
	svc         *Service
	store       *memory.Store
	uploader    *MockUploader
	admin       models.Principal
	contributor models.Principal
	user        models.Principal
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	mk := func(email string, role models.Role) models.Principal {
		u, err := store.CreateUser(ctx, &models.User{Email: email, Role: role})
		require.NoError(t, err)
		return models.Principal{UserID: u.ID, Role: role, Email: email}
	}
	up := &MockUploader{}
	up.On("Put", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.AnythingOfType("int64"), mock.AnythingOfType("string")).
		Return(nil).Maybe()
	return &fixture{
		svc:         NewService(store, up, newNoopLogger()),
		store:       store,
		uploader:    up,
		admin:       mk("admin@example.com", models.RoleAdmin),
		contributor: mk("author@example.com", models.RoleContributor),
		user:        mk("user@example.com", models.RoleUser),
	}
}

func upload(title string) Upload {
	return Upload{
		Title:       title,
		Tags:        "nature,trees",
		Type:        "3d",
		FileName:    "forest pack.zip",
		ContentType: "application/zip",
		Size:        4,
		File:        strings.NewReader("data"),
	}
}

func TestCreate_StatusByRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	pending, err := f.svc.Create(ctx, f.contributor, upload("Forest"))
	require.NoError(t, err)
	assert.Equal(t, models.AssetPending, pending.Status)
	assert.Equal(t, f.contributor.UserID, pending.AuthorID)
	assert.Regexp(t, regexp.MustCompile(`^assets/[0-9A-Za-z]{27}-forest_pack\.zip$`), pending.ObjectKey)

	approved, err := f.svc.Create(ctx, f.admin, upload("Desert"))
	require.NoError(t, err)
	assert.Equal(t, models.AssetApproved, approved.Status)

	_, err = f.svc.Create(ctx, f.user, upload("Nope"))
	assert.ErrorIs(t, err, models.ErrForbidden)
	f.uploader.AssertNumberOfCalls(t, "Put", 2)
}

func TestCreate_Sanitizes(t *testing.T) {
	f := setup(t)
	in := upload(`<script>alert(1)</script><b>Forest</b>`)
	in.Description = `<img src=x onerror=alert(1)>Trees`

	a, err := f.svc.Create(context.Background(), f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, "Forest", a.Title)
	assert.Equal(t, "Trees", a.Description)
}

func TestCreate_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin, upload("<p></p>"))
	assert.ErrorIs(t, err, models.ErrValidation)

	in := upload("Forest")
	in.File = nil
	_, err = f.svc.Create(ctx, f.admin, in)
	assert.ErrorIs(t, err, models.ErrValidation)
	f.uploader.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_UploadFailure(t *testing.T) {
	store := memory.New()
	u, err := store.CreateUser(context.Background(), &models.User{Email: "a@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	up := &MockUploader{}
	up.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket missing"))
	svc := NewService(store, up, newNoopLogger())

	_, err = svc.Create(context.Background(), models.Principal{UserID: u.ID, Role: models.RoleAdmin}, upload("Forest"))
	require.Error(t, err)
	page, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		in     string
		suffix string
	}{
		{"model.fbx", "model.fbx"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\tex ture.png`, "tex_ture.png"},
		{"", "file"},
		{"...", "file"},
	}
	for _, tt := range tests {
		key := ObjectKey(tt.in)
		assert.True(t, strings.HasPrefix(key, "assets/"), key)
		assert.True(t, strings.HasSuffix(key, "-"+tt.suffix), "%q -> %q", tt.in, key)
	}
	assert.NotEqual(t, ObjectKey("a.zip"), ObjectKey("a.zip"))
}

func TestList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, title := range []string{"Oak", "Pine", "Birch"} {
		_, err := f.svc.Create(ctx, f.admin, upload(title))
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, f.contributor, upload("Hidden"))
	require.NoError(t, err)

	page, err := f.svc.List(ctx, ListParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 2)

	page, err = f.svc.List(ctx, ListParams{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = f.svc.List(ctx, ListParams{Query: "pine"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Pine", page.Items[0].Title)

	page, err = f.svc.List(ctx, ListParams{Query: "hidden"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.svc.List(ctx, ListParams{Limit: 1000, Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 3)
}

func TestGet_Visibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	pending, err := f.svc.Create(ctx, f.contributor, upload("Draft"))
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, nil, pending.ID)
	assert.ErrorIs(t, err, models.ErrAssetNotFound)
	_, err = f.svc.Get(ctx, &f.user, pending.ID)
	assert.ErrorIs(t, err, models.ErrAssetNotFound)

	got, err := f.svc.Get(ctx, &f.contributor, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)
	_, err = f.svc.Get(ctx, &f.admin, pending.ID)
	require.NoError(t, err)

	_, err = f.svc.Moderate(ctx, f.admin, pending.ID, models.AssetApproved)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, nil, pending.ID)
	require.NoError(t, err)
}

func TestModerate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, err := f.svc.Create(ctx, f.contributor, upload("Draft"))
	require.NoError(t, err)

	_, err = f.svc.Moderate(ctx, f.contributor, a.ID, models.AssetApproved)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.svc.Moderate(ctx, f.admin, a.ID, models.AssetStatus("DELETED"))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.Moderate(ctx, f.admin, "missing", models.AssetApproved)
	assert.ErrorIs(t, err, models.ErrAssetNotFound)

	got, err := f.svc.Moderate(ctx, f.admin, a.ID, models.AssetRejected)
	require.NoError(t, err)
	assert.Equal(t, models.AssetRejected, got.Status)
}
