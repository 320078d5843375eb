package planner

import (
	"context"
	"fmt"
	"math/rand/v2"

	"fitmate/internal/meal"
)

// MealSource provides the meal catalog.
type MealSource interface {
	ListMeals(ctx context.Context) ([]meal.Meal, error)
}

// PlanWriter replaces a user's whole plan in one step.
type PlanWriter interface {
	ReplacePlan(ctx context.Context, userID int64, assignments []Assignment) error
}

// PlanLister returns a user's assignments joined with their meals.
type PlanLister interface {
	ListPlanEntries(ctx context.Context, userID int64) ([]Entry, error)
}

// PlanStore is the persistence port of the planner.
type PlanStore interface {
	PlanWriter
	PlanLister
}

// RandomSource picks an index in [0, n).
type RandomSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRandom returns the process-wide random source.
func DefaultRandom() RandomSource { return globalRand{} }

// Request describes one planning request.
type Request struct {
	UserID   int64
	Goals    []meal.Category
	Slots    SlotConfig
	Duration int
}

// Generator builds meal plans from the catalog.
type Generator struct {
	meals MealSource
	store PlanWriter
	rnd   RandomSource
}

// NewGenerator creates a new Generator. A nil rnd uses DefaultRandom.
func NewGenerator(meals MealSource, store PlanWriter, rnd RandomSource) *Generator {
	if rnd == nil {
		rnd = DefaultRandom()
	}
	return &Generator{
		meals: meals,
		store: store,
		rnd:   rnd,
	}
}

// Generate picks one meal per slot per day and replaces the user's plan.
// Meals never repeat within a day; across days unused meals are preferred.
// The plan is only written once every slot is filled, so on error the
// previous plan is left untouched.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Assignment, error) {
	if len(req.Goals) == 0 {
		return nil, ErrNoGoals
	}
	if req.Duration < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, req.Duration)
	}

	goals := make(map[meal.Category]struct{}, len(req.Goals))
	for _, goal := range req.Goals {
		c, err := meal.ParseCategory(string(goal))
		if err != nil {
			return nil, err
		}
		goals[c] = struct{}{}
	}

	catalog, err := g.meals.ListMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}

	candidates := make(map[meal.SlotType][]meal.Meal)
	for _, m := range catalog {
		if m.MatchesAny(goals) {
			candidates[m.SlotType()] = append(candidates[m.SlotType()], m)
		}
	}

	slots := req.Slots.Slots()
	assignments := make([]Assignment, 0, req.Duration*len(slots))
	usedOverall := make(map[int64]struct{})

	for day := 1; day <= req.Duration; day++ {
		usedToday := make(map[int64]struct{})
		for _, slot := range slots {
			chosen, ok := g.pick(candidates[slot.SlotType()], usedToday, usedOverall)
			if !ok {
				return nil, &InsufficientMealsError{Day: day, Slot: slot}
			}
			usedToday[chosen.ID] = struct{}{}
			usedOverall[chosen.ID] = struct{}{}
			assignments = append(assignments, Assignment{
				UserID: req.UserID,
				Day:    day,
				Slot:   slot,
				MealID: chosen.ID,
				Status: StatusPending,
			})
		}
	}

	if err := g.store.ReplacePlan(ctx, req.UserID, assignments); err != nil {
		return nil, fmt.Errorf("failed to save plan for user %d: %w", req.UserID, err)
	}
	return assignments, nil
}

// pick chooses uniformly among meals unused in the whole plan, falling back
// to any meal not yet used today.
func (g *Generator) pick(pool []meal.Meal, usedToday, usedOverall map[int64]struct{}) (meal.Meal, bool) {
	var available, novel []meal.Meal
	for _, m := range pool {
		if _, ok := usedToday[m.ID]; ok {
			continue
		}
		available = append(available, m)
		if _, ok := usedOverall[m.ID]; !ok {
			novel = append(novel, m)
		}
	}

	switch {
	case len(novel) > 0:
		return novel[g.rnd.IntN(len(novel))], true
	case len(available) > 0:
		return available[g.rnd.IntN(len(available))], true
	default:
		return meal.Meal{}, false
	}
}
