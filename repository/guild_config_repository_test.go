package repository

import (
	"context"
	"testing"

	"feedbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildConfigRepository_GetOrCreateGuildConfig(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates config on first sight", func(t *testing.T) {
		config, err := repo.GetOrCreateGuildConfig(ctx, 1001)
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, int64(1001), config.GuildID)
		assert.Equal(t, 0, config.LastQueryID)
		assert.False(t, config.CreatedAt.IsZero())
	})

	t.Run("returns existing config", func(t *testing.T) {
		first, err := repo.GetOrCreateGuildConfig(ctx, 1002)
		require.NoError(t, err)

		again, err := repo.GetOrCreateGuildConfig(ctx, 1002)
		require.NoError(t, err)

		assert.Equal(t, first.GuildID, again.GuildID)
		assert.Equal(t, first.CreatedAt, again.CreatedAt)
	})
}

func TestGuildConfigRepository_AllowedUsers(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreateGuildConfig(ctx, 1001)
	require.NoError(t, err)

	t.Run("empty list for fresh guild", func(t *testing.T) {
		users, err := repo.GetAllowedUsers(ctx, 1001)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("add and list", func(t *testing.T) {
		require.NoError(t, repo.AddAllowedUser(ctx, 1001, 42))
		require.NoError(t, repo.AddAllowedUser(ctx, 1001, 7))

		users, err := repo.GetAllowedUsers(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 42}, users)
	})

	t.Run("re-adding is a no-op", func(t *testing.T) {
		require.NoError(t, repo.AddAllowedUser(ctx, 1001, 42))

		users, err := repo.GetAllowedUsers(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 42}, users)
	})

	t.Run("lists are per guild", func(t *testing.T) {
		_, err := repo.GetOrCreateGuildConfig(ctx, 1002)
		require.NoError(t, err)

		users, err := repo.GetAllowedUsers(ctx, 1002)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestGuildConfigRepository_NextQueryID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreateGuildConfig(ctx, 1001)
	require.NoError(t, err)

	t.Run("allocates monotonically", func(t *testing.T) {
		first, err := repo.NextQueryID(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, 1, first)

		second, err := repo.NextQueryID(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, 2, second)
	})

	t.Run("counters are per guild", func(t *testing.T) {
		_, err := repo.GetOrCreateGuildConfig(ctx, 1002)
		require.NoError(t, err)

		id, err := repo.NextQueryID(ctx, 1002)
		require.NoError(t, err)
		assert.Equal(t, 1, id)
	})

	t.Run("unknown guild fails", func(t *testing.T) {
		_, err := repo.NextQueryID(ctx, 9999)
		assert.Error(t, err)
	})
}
