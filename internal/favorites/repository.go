package favorites

import (
	"context"
	"database/sql"
	"fmt"

	"fitmate/internal/favorites/favoritesdb"
	"fitmate/internal/meal"
)

// Repository stores the meals a user marked as favorite.
type Repository struct {
	queries *favoritesdb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: favoritesdb.New(d),
		db:      d,
	}
}

// Add marks a meal as favorite. It reports false if it already was one.
func (r *Repository) Add(ctx context.Context, userID, mealID int64) (bool, error) {
	n, err := r.queries.AddFavorite(ctx, favoritesdb.AddFavoriteParams{UserID: userID, MealID: mealID})
	if err != nil {
		return false, fmt.Errorf("failed to add favorite %d for user %d: %w", mealID, userID, err)
	}
	return n > 0, nil
}

// Remove unmarks a meal. It reports false if it was not a favorite.
func (r *Repository) Remove(ctx context.Context, userID, mealID int64) (bool, error) {
	n, err := r.queries.RemoveFavorite(ctx, favoritesdb.RemoveFavoriteParams{UserID: userID, MealID: mealID})
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite %d for user %d: %w", mealID, userID, err)
	}
	return n > 0, nil
}

// IsFavorite reports whether the user marked the meal as favorite.
func (r *Repository) IsFavorite(ctx context.Context, userID, mealID int64) (bool, error) {
	v, err := r.queries.IsFavorite(ctx, favoritesdb.IsFavoriteParams{UserID: userID, MealID: mealID})
	if err != nil {
		return false, fmt.Errorf("failed to check favorite %d for user %d: %w", mealID, userID, err)
	}
	return v != 0, nil
}

// List returns the user's favorite meals ordered by name.
func (r *Repository) List(ctx context.Context, userID int64) ([]meal.Meal, error) {
	rows, err := r.queries.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites for user %d: %w", userID, err)
	}

	meals := make([]meal.Meal, 0, len(rows))
	for _, row := range rows {
		meals = append(meals, meal.Meal{
			ID:           row.ID,
			Type:         row.Type,
			Name:         row.Name,
			Identifier:   row.Identifier,
			Categories:   meal.ParseStoredCategories(row.Identifier, row.Categories),
			PrepTime:     int(row.PrepTime),
			Overnight:    row.Overnight != 0,
			Equipment:    row.Equipment,
			Ingredients:  row.Ingredients,
			Instructions: row.Instructions,
			Image:        row.Image,
		})
	}
	return meals, nil
}
