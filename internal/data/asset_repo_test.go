package data

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/testutil"
)

func TestAssetRepo_SaveAndGet(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewAssetRepo(db)
		ctx := context.Background()

		url, err := repo.Save(ctx, core.SaveAssetParams{
			ProjectID:   "proj-1",
			Kind:        "image",
			ContentType: "image/png",
			Data:        []byte("png-bytes"),
			SourceURL:   "https://cdn.example/frame.png",
		})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(url, "/assets/"))

		id := strings.TrimPrefix(url, "/assets/")
		asset, err := repo.Get(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, id, asset.ID)
		assert.Equal(t, "proj-1", asset.ProjectID)
		assert.Equal(t, "image", asset.Kind)
		assert.Equal(t, "image/png", asset.ContentType)
		assert.Equal(t, []byte("png-bytes"), asset.Data)
		assert.Equal(t, "https://cdn.example/frame.png", asset.SourceURL)
		assert.NotZero(t, asset.CreatedAt)
	})
}

func TestAssetRepo_Save_EmptyData(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewAssetRepo(db)

		_, err := repo.Save(context.Background(), core.SaveAssetParams{
			ProjectID:   "proj-1",
			Kind:        "image",
			ContentType: "image/png",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "asset data is required")
	})
}

func TestAssetRepo_Get_NotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewAssetRepo(db)

		asset, err := repo.Get(context.Background(), uuid.NewString())
		require.ErrorIs(t, err, ErrAssetNotFound)
		assert.Nil(t, asset)
	})
}

func TestAssetRepo_NotConfigured(t *testing.T) {
	repo := NewAssetRepo(nil)

	_, err := repo.Save(context.Background(), core.SaveAssetParams{Data: []byte("x")})
	require.ErrorIs(t, err, ErrAssetsNotConfigured)

	_, err = repo.Get(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrAssetsNotConfigured)
}
