package storage

import (
	"os"
	"path/filepath"
	"testing"

	"fitmate/internal/meal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogStore(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewCatalogStore(tempDir)
	require.NoError(t, err)

	entry := CatalogEntry{
		Identifier:  "green-smoothie",
		Name:        "Green Smoothie",
		Type:        "Breakfast",
		Categories:  []string{"vegan", "Lose Weight"},
		PrepTime:    5,
		Equipment:   []string{"blender"},
		Ingredients: []string{"spinach", "banana (frozen)"},
	}

	t.Run("CheckExists-False", func(t *testing.T) {
		exists, err := store.Exists(entry.Identifier)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Save", func(t *testing.T) {
		require.NoError(t, store.Save(entry))
		_, err := os.Stat(filepath.Join(tempDir, "green-smoothie.yaml"))
		assert.NoError(t, err)

		exists, err := store.Exists(entry.Identifier)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Load", func(t *testing.T) {
		loaded, err := store.Load(entry.Identifier)
		require.NoError(t, err)

		want := entry
		want.Path = filepath.Join(tempDir, "green-smoothie.yaml")
		assert.Equal(t, want, *loaded)
	})

	t.Run("LoadUnknown", func(t *testing.T) {
		_, err := store.Load("missing")
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("SaveRejectsBadIdentifier", func(t *testing.T) {
		err := store.Save(CatalogEntry{Identifier: "../escape", Name: "x"})
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("ListAllWalksSubdirectories", func(t *testing.T) {
		nested := filepath.Join(tempDir, "dinners")
		require.NoError(t, os.MkdirAll(nested, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "chili.yml"), []byte("name: Chili\ntype: Dinner\ncategories: [high_protein]\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("ignored"), 0644))

		entries, err := store.ListAll()
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "chili", entries[0].Identifier)
		assert.Equal(t, "green-smoothie", entries[1].Identifier)
	})
}

func TestCatalogStoreNestedEntries(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewCatalogStore(tempDir)
	require.NoError(t, err)

	nestedPath := filepath.Join(tempDir, "mains", "salad.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(nestedPath), 0755))
	require.NoError(t, os.WriteFile(nestedPath, []byte("identifier: salad\nname: Salad\ntype: Lunch\n"), 0644))

	t.Run("ExistsFindsNestedIdentifier", func(t *testing.T) {
		exists, err := store.Exists("salad")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("SaveWritesBackToSourceFile", func(t *testing.T) {
		loaded, err := store.Load("salad")
		require.NoError(t, err)
		assert.Equal(t, nestedPath, loaded.Path)

		loaded.Categories = []string{"vegan"}
		require.NoError(t, store.Save(*loaded))

		_, err = os.Stat(filepath.Join(tempDir, "salad.yaml"))
		assert.True(t, os.IsNotExist(err))

		entries, err := store.ListAll()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, []string{"vegan"}, entries[0].Categories)
	})

	t.Run("ExistsReportsUnreadableCatalog", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "broken.yaml"), []byte("name: [unclosed"), 0644))

		exists, err := store.Exists("salad")
		assert.Error(t, err)
		assert.False(t, exists)
	})
}

func TestCatalogEntryToMeal(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		m, err := CatalogEntry{
			Identifier:  "oats",
			Name:        " Oats ",
			Type:        "Breakfast",
			Categories:  []string{"save time", "vegan"},
			Overnight:   true,
			Equipment:   []string{"jar", "spoon"},
			Ingredients: []string{"oats", "milk"},
		}.ToMeal()
		require.NoError(t, err)
		assert.Equal(t, "Oats", m.Name)
		assert.Equal(t, []meal.Category{meal.SaveTime, meal.Vegan}, m.Categories)
		assert.Equal(t, "jar, spoon", m.Equipment)
		assert.Equal(t, "oats; milk", m.Ingredients)
		assert.Equal(t, []string{"Oats", "Milk"}, meal.IngredientList(m.Ingredients))
	})

	tests := []struct {
		name  string
		entry CatalogEntry
	}{
		{"BadIdentifier", CatalogEntry{Identifier: "Has Spaces", Name: "x", Type: "Lunch"}},
		{"NoName", CatalogEntry{Identifier: "x", Type: "Lunch"}},
		{"NoType", CatalogEntry{Identifier: "x", Name: "x"}},
		{"UnknownCategory", CatalogEntry{Identifier: "x", Name: "x", Type: "Lunch", Categories: []string{"paleo"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.entry.ToMeal()
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "chicken-tikka-masala", Slugify("Chicken Tikka Masala!"))
	assert.Equal(t, "greek-yogurt-bowl", Slugify("  Greek   Yogurt Bowl "))
}
