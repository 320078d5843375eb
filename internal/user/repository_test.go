package user

import (
	"context"
	"path/filepath"
	"testing"

	"fitmate/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.SQL)

	t.Run("EnsureTelegramUserIsIdempotent", func(t *testing.T) {
		first, err := repo.EnsureTelegramUser(ctx, 555, "ana_s", "Ana")
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, int64(555), first.TelegramID)
		assert.Equal(t, "Ana", first.Profile.Name)

		second, err := repo.EnsureTelegramUser(ctx, 555, "renamed", "Other")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "ana_s", second.Username)
	})

	t.Run("CreateWithoutTelegram", func(t *testing.T) {
		a, err := repo.Create(ctx, "cli-a", "A")
		require.NoError(t, err)
		b, err := repo.Create(ctx, "cli-b", "B")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)

		u, err := repo.Get(ctx, a)
		require.NoError(t, err)
		assert.Zero(t, u.TelegramID)
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		id, err := repo.Create(ctx, "bob", "Bob")
		require.NoError(t, err)

		p := Profile{Name: "Bob", Lastname: "Stone", Age: 40, Height: 180, HeightUnit: "cm", Weight: 80, WeightUnit: "kg", Allergies: "nuts"}
		require.NoError(t, repo.UpdateProfile(ctx, id, p))

		u, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, p, u.Profile)

		assert.Error(t, repo.UpdateProfile(ctx, 9999, p))
	})

	t.Run("GetMissing", func(t *testing.T) {
		u, err := repo.Get(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, u)
	})
}
