package repository

import (
	"context"
	"testing"

	"feedbot/models"
	"feedbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichmentCacheRepository_GetAndPut(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	_, err := NewGuildConfigRepository(testDB.DB).GetOrCreateGuildConfig(ctx, 1001)
	require.NoError(t, err)

	repo := NewEnrichmentCacheRepository(testDB.DB)

	url := "https://example.com/anime/123"

	t.Run("miss returns nil", func(t *testing.T) {
		e, err := repo.Get(ctx, 1001, url)
		require.NoError(t, err)
		assert.Nil(t, e)
	})

	t.Run("put then get", func(t *testing.T) {
		title := "Show Name"
		image := "https://cdn.example/cover.jpg"
		require.NoError(t, repo.Put(ctx, &models.Enrichment{
			GuildID: 1001, URL: url, Title: &title, ImageURL: &image,
		}))

		e, err := repo.Get(ctx, 1001, url)
		require.NoError(t, err)
		require.NotNil(t, e)
		require.NotNil(t, e.Title)
		assert.Equal(t, "Show Name", *e.Title)
		require.NotNil(t, e.ImageURL)
		assert.Equal(t, image, *e.ImageURL)
		assert.Nil(t, e.CanonicalURL)
		assert.False(t, e.FetchedAt.IsZero())
	})

	t.Run("first write wins", func(t *testing.T) {
		other := "Different Title"
		require.NoError(t, repo.Put(ctx, &models.Enrichment{
			GuildID: 1001, URL: url, Title: &other,
		}))

		e, err := repo.Get(ctx, 1001, url)
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, "Show Name", *e.Title)
	})

	t.Run("cache is per guild", func(t *testing.T) {
		e, err := repo.Get(ctx, 2002, url)
		require.NoError(t, err)
		assert.Nil(t, e)
	})
}
