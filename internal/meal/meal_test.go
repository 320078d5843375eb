package meal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw     string
		want    Category
		wantErr bool
	}{
		{"lose_weight", LoseWeight, false},
		{"Lose Weight", LoseWeight, false},
		{"  HIGH_PROTEIN ", HighProtein, false},
		{"save   time", SaveTime, false},
		{"paleo", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCategory(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategories(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		cats, err := ParseCategories("  ")
		require.NoError(t, err)
		assert.Empty(t, cats)
	})

	t.Run("DedupesAndNormalizes", func(t *testing.T) {
		cats, err := ParseCategories("keto; Low Carb;keto;;")
		require.NoError(t, err)
		assert.Equal(t, []Category{Keto, LowCarb}, cats)
	})

	t.Run("RejectsUnknown", func(t *testing.T) {
		_, err := ParseCategories("keto;carnivore")
		require.ErrorIs(t, err, ErrUnknownCategory)
		assert.Contains(t, err.Error(), "carnivore")
	})
}

func TestCategoriesFromColumn(t *testing.T) {
	assert.Equal(t, []Category{Vegan, LowFat}, ParseStoredCategories("m1", "vegan;paleo;low_fat"))
	assert.Empty(t, ParseStoredCategories("m2", ""))
}

func TestFormatCategories(t *testing.T) {
	assert.Equal(t, "keto;vegan", FormatCategories([]Category{Keto, Vegan}))
	assert.Equal(t, "", FormatCategories(nil))
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Lose Weight", LoseWeight.Label())
	assert.Equal(t, "Keto", Keto.Label())
	assert.Equal(t, "Élan Vital", Category("élan_vital").Label())
}

func TestCategoriesReturnsCopy(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 12)
	cats[0] = "mutated"
	assert.Equal(t, LoseWeight, Categories()[0])
}

func TestMealSlotType(t *testing.T) {
	tests := []struct {
		typ  string
		want SlotType
	}{
		{"Breakfast", SlotTypeBreakfast},
		{" breakfast ", SlotTypeBreakfast},
		{"Lunch", SlotTypeLunchDinner},
		{"Dinner", SlotTypeLunchDinner},
		{"Lunch/Dinner", SlotTypeLunchDinner},
		{"Snack", SlotTypeLunchDinner},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, Meal{Type: tt.typ}.SlotType())
		})
	}
}

func TestMealMatchesAny(t *testing.T) {
	m := Meal{Categories: []Category{Keto, HighProtein}}

	assert.True(t, m.MatchesAny(map[Category]struct{}{Keto: {}}))
	assert.False(t, m.MatchesAny(map[Category]struct{}{Vegan: {}}))
	assert.False(t, Meal{}.MatchesAny(map[Category]struct{}{Keto: {}}))
	assert.True(t, m.HasCategory(HighProtein))
	assert.False(t, m.HasCategory(LowFat))
}
