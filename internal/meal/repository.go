package meal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fitmate/internal/meal/mealdb"
)

// Repository is a database-backed repository for the meal catalog.
type Repository struct {
	queries *mealdb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: mealdb.New(d),
		db:      d,
	}
}

// ListMeals returns the whole catalog ordered by id.
func (r *Repository) ListMeals(ctx context.Context) ([]Meal, error) {
	rows, err := r.queries.ListMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	meals := make([]Meal, 0, len(rows))
	for _, row := range rows {
		meals = append(meals, fromRow(row))
	}
	return meals, nil
}

// Get retrieves a meal by its ID. A missing meal is (nil, nil).
func (r *Repository) Get(ctx context.Context, id int64) (*Meal, error) {
	row, err := r.queries.GetMeal(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal %d: %w", id, err)
	}
	m := fromRow(row)
	return &m, nil
}

// Save inserts or updates a meal keyed by its identifier and returns its ID.
func (r *Repository) Save(ctx context.Context, m Meal) (int64, error) {
	if strings.TrimSpace(m.Identifier) == "" {
		return 0, fmt.Errorf("meal %q has no identifier", m.Name)
	}
	if strings.TrimSpace(m.Name) == "" {
		return 0, fmt.Errorf("meal %s has no name", m.Identifier)
	}

	var overnight int64
	if m.Overnight {
		overnight = 1
	}

	id, err := r.queries.UpsertMeal(ctx, mealdb.UpsertMealParams{
		Type:         m.Type,
		Name:         m.Name,
		Identifier:   m.Identifier,
		Categories:   FormatCategories(m.Categories),
		PrepTime:     int64(m.PrepTime),
		Overnight:    overnight,
		Equipment:    m.Equipment,
		Ingredients:  m.Ingredients,
		Instructions: m.Instructions,
		Image:        m.Image,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save meal %s: %w", m.Identifier, err)
	}
	return id, nil
}

// Count returns the number of meals in the catalog.
func (r *Repository) Count(ctx context.Context) (int, error) {
	count, err := r.queries.CountMeals(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count meals: %w", err)
	}
	return int(count), nil
}

// ListByCategory returns meals tagged with c whose slot type is st.
func (r *Repository) ListByCategory(ctx context.Context, c Category, st SlotType) ([]Meal, error) {
	all, err := r.ListMeals(ctx)
	if err != nil {
		return nil, err
	}

	var out []Meal
	for _, m := range all {
		if m.SlotType() == st && m.HasCategory(c) {
			out = append(out, m)
		}
	}
	return out, nil
}

func fromRow(row mealdb.Meal) Meal {
	return Meal{
		ID:           row.ID,
		Type:         row.Type,
		Name:         row.Name,
		Identifier:   row.Identifier,
		Categories:   ParseStoredCategories(row.Identifier, row.Categories),
		PrepTime:     int(row.PrepTime),
		Overnight:    row.Overnight != 0,
		Equipment:    row.Equipment,
		Ingredients:  row.Ingredients,
		Instructions: row.Instructions,
		Image:        row.Image,
	}
}
