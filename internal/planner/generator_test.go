package planner

import (
	"context"
	"errors"
	"testing"

	"fitmate/internal/meal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMealSource struct {
	meals []meal.Meal
	err   error
}

func (f *fakeMealSource) ListMeals(ctx context.Context) ([]meal.Meal, error) {
	return f.meals, f.err
}

// fakePlanStore keeps plans in memory and joins them with the catalog on read.
type fakePlanStore struct {
	catalog  []meal.Meal
	plans    map[int64][]Assignment
	replaced int
	err      error
}

func newFakePlanStore(catalog []meal.Meal) *fakePlanStore {
	return &fakePlanStore{catalog: catalog, plans: make(map[int64][]Assignment)}
}

func (f *fakePlanStore) ReplacePlan(ctx context.Context, userID int64, assignments []Assignment) error {
	if f.err != nil {
		return f.err
	}
	f.replaced++
	f.plans[userID] = append([]Assignment(nil), assignments...)
	return nil
}

func (f *fakePlanStore) ListPlanEntries(ctx context.Context, userID int64) ([]Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var entries []Entry
	for _, a := range f.plans[userID] {
		e := Entry{Assignment: a}
		for _, m := range f.catalog {
			if m.ID == a.MealID {
				e.Meal = m
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// firstRandom always picks the first candidate.
type firstRandom struct{}

func (firstRandom) IntN(n int) int { return 0 }

func breakfast(id int64, cats ...meal.Category) meal.Meal {
	return meal.Meal{ID: id, Type: "Breakfast", Name: "Breakfast", Categories: cats}
}

func lunchDinner(id int64, cats ...meal.Category) meal.Meal {
	return meal.Meal{ID: id, Type: "Lunch/Dinner", Name: "Main", Categories: cats}
}

func TestGenerateNoDuplicatesWithinDay(t *testing.T) {
	catalog := []meal.Meal{
		breakfast(1, meal.Keto), breakfast(2, meal.Keto),
		lunchDinner(10, meal.Keto), lunchDinner(11, meal.Keto), lunchDinner(12, meal.Keto),
	}

	for i := 0; i < 50; i++ {
		store := newFakePlanStore(catalog)
		gen := NewGenerator(&fakeMealSource{meals: catalog}, store, nil)

		plan, err := gen.Generate(context.Background(), Request{
			UserID: 1, Goals: []meal.Category{meal.Keto}, Slots: SlotsAll, Duration: 7,
		})
		require.NoError(t, err)
		require.Len(t, plan, 21)

		perDay := make(map[int]map[int64]bool)
		for _, a := range plan {
			if perDay[a.Day] == nil {
				perDay[a.Day] = make(map[int64]bool)
			}
			assert.False(t, perDay[a.Day][a.MealID], "meal %d repeated on day %d", a.MealID, a.Day)
			perDay[a.Day][a.MealID] = true
		}
	}
}

func TestGenerateNoRepeatsWhenCatalogIsLargeEnough(t *testing.T) {
	catalog := []meal.Meal{
		breakfast(1, meal.Vegan), breakfast(2, meal.Vegan), breakfast(3, meal.Vegan),
		lunchDinner(10, meal.Vegan), lunchDinner(11, meal.Vegan), lunchDinner(12, meal.Vegan),
		lunchDinner(13, meal.Vegan), lunchDinner(14, meal.Vegan), lunchDinner(15, meal.Vegan),
	}

	for i := 0; i < 50; i++ {
		gen := NewGenerator(&fakeMealSource{meals: catalog}, newFakePlanStore(catalog), DefaultRandom())
		plan, err := gen.Generate(context.Background(), Request{
			UserID: 1, Goals: []meal.Category{meal.Vegan}, Slots: SlotsAll, Duration: 3,
		})
		require.NoError(t, err)

		seen := make(map[int64]bool)
		for _, a := range plan {
			assert.False(t, seen[a.MealID], "meal %d repeated", a.MealID)
			seen[a.MealID] = true
		}
	}
}

func TestGenerateReplacesPreviousPlan(t *testing.T) {
	catalog := []meal.Meal{breakfast(1, meal.Keto), breakfast(2, meal.Keto), lunchDinner(10, meal.Keto), lunchDinner(11, meal.Keto)}
	store := newFakePlanStore(catalog)
	gen := NewGenerator(&fakeMealSource{meals: catalog}, store, firstRandom{})
	ctx := context.Background()

	_, err := gen.Generate(ctx, Request{UserID: 7, Goals: []meal.Category{meal.Keto}, Slots: SlotsAll, Duration: 3})
	require.NoError(t, err)
	require.Len(t, store.plans[7], 9)

	_, err = gen.Generate(ctx, Request{UserID: 7, Goals: []meal.Category{meal.Keto}, Slots: SlotsBreakfast, Duration: 2})
	require.NoError(t, err)
	require.Len(t, store.plans[7], 2)
	for _, a := range store.plans[7] {
		assert.Equal(t, Breakfast, a.Slot)
		assert.Equal(t, StatusPending, a.Status)
	}
}

func TestGenerateSingleLunchDinnerMeal(t *testing.T) {
	catalog := []meal.Meal{breakfast(1, meal.Keto), breakfast(2, meal.Keto), lunchDinner(3, meal.Keto)}
	ctx := context.Background()

	t.Run("AllThreeFails", func(t *testing.T) {
		store := newFakePlanStore(catalog)
		gen := NewGenerator(&fakeMealSource{meals: catalog}, store, firstRandom{})

		_, err := gen.Generate(ctx, Request{UserID: 1, Goals: []meal.Category{meal.Keto}, Slots: SlotsAll, Duration: 2})
		require.ErrorIs(t, err, ErrInsufficientMeals)

		var insufficient *InsufficientMealsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 1, insufficient.Day)
		assert.Equal(t, Dinner, insufficient.Slot)
		assert.Zero(t, store.replaced)
	})

	t.Run("BreakfastAndLunchRepeatsAcrossDays", func(t *testing.T) {
		store := newFakePlanStore(catalog)
		gen := NewGenerator(&fakeMealSource{meals: catalog}, store, firstRandom{})

		plan, err := gen.Generate(ctx, Request{UserID: 1, Goals: []meal.Category{meal.Keto}, Slots: SlotsBreakfastAndLunch, Duration: 2})
		require.NoError(t, err)
		assert.Equal(t, []Assignment{
			{UserID: 1, Day: 1, Slot: Breakfast, MealID: 1, Status: StatusPending},
			{UserID: 1, Day: 1, Slot: Lunch, MealID: 3, Status: StatusPending},
			{UserID: 1, Day: 2, Slot: Breakfast, MealID: 2, Status: StatusPending},
			{UserID: 1, Day: 2, Slot: Lunch, MealID: 3, Status: StatusPending},
		}, plan)
	})
}

func TestGenerateNoLunchDinnerCandidates(t *testing.T) {
	catalog := []meal.Meal{breakfast(1, meal.Keto), lunchDinner(2, meal.Vegan)}

	for _, slots := range []SlotConfig{SlotsLunch, SlotsDinner, SlotsAll, SlotsLunchAndDinner, SlotsBreakfastDinner} {
		t.Run(string(slots), func(t *testing.T) {
			gen := NewGenerator(&fakeMealSource{meals: catalog}, newFakePlanStore(catalog), firstRandom{})
			_, err := gen.Generate(context.Background(), Request{UserID: 1, Goals: []meal.Category{meal.Keto}, Slots: slots, Duration: 1})
			assert.ErrorIs(t, err, ErrInsufficientMeals)
		})
	}
}

func TestGenerateSingleBreakfastRepeats(t *testing.T) {
	catalog := []meal.Meal{breakfast(5, meal.LowFat), breakfast(6, meal.Keto)}
	gen := NewGenerator(&fakeMealSource{meals: catalog}, newFakePlanStore(catalog), DefaultRandom())

	plan, err := gen.Generate(context.Background(), Request{UserID: 1, Goals: []meal.Category{meal.LowFat}, Slots: SlotsBreakfast, Duration: 3})
	require.NoError(t, err)
	require.Len(t, plan, 3)
	for i, a := range plan {
		assert.Equal(t, i+1, a.Day)
		assert.Equal(t, int64(5), a.MealID)
	}
}

func TestGenerateMatchesAnyGoal(t *testing.T) {
	catalog := []meal.Meal{
		breakfast(1, meal.Vegan),
		breakfast(2, meal.Keto),
		breakfast(3),
		breakfast(4, meal.GainMuscle),
	}
	gen := NewGenerator(&fakeMealSource{meals: catalog}, newFakePlanStore(catalog), DefaultRandom())

	plan, err := gen.Generate(context.Background(), Request{
		UserID: 1, Goals: []meal.Category{meal.Vegan, meal.Keto}, Slots: SlotsBreakfast, Duration: 10,
	})
	require.NoError(t, err)
	for _, a := range plan {
		assert.Contains(t, []int64{1, 2}, a.MealID)
	}
}

func TestGenerateValidation(t *testing.T) {
	catalog := []meal.Meal{breakfast(1, meal.Keto)}
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"NoGoals", Request{UserID: 1, Slots: SlotsBreakfast, Duration: 1}, ErrNoGoals},
		{"ZeroDuration", Request{UserID: 1, Goals: []meal.Category{meal.Keto}, Duration: 0}, ErrInvalidDuration},
		{"UnknownGoal", Request{UserID: 1, Goals: []meal.Category{"paleo"}, Duration: 1}, meal.ErrUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakePlanStore(catalog)
			gen := NewGenerator(&fakeMealSource{meals: catalog}, store, firstRandom{})
			_, err := gen.Generate(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, store.replaced)
		})
	}
}

func TestGenerateStoreErrors(t *testing.T) {
	catalog := []meal.Meal{breakfast(1, meal.Keto)}
	req := Request{UserID: 1, Goals: []meal.Category{meal.Keto}, Slots: SlotsBreakfast, Duration: 1}

	t.Run("MealSource", func(t *testing.T) {
		gen := NewGenerator(&fakeMealSource{err: errors.New("db down")}, newFakePlanStore(nil), nil)
		_, err := gen.Generate(context.Background(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load meals")
	})

	t.Run("PlanStore", func(t *testing.T) {
		store := newFakePlanStore(catalog)
		store.err = errors.New("disk full")
		gen := NewGenerator(&fakeMealSource{meals: catalog}, store, nil)
		_, err := gen.Generate(context.Background(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}
