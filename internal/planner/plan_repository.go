package planner

import (
	"context"
	"database/sql"
	"fmt"

	"fitmate/internal/database"
	"fitmate/internal/meal"
	"fitmate/internal/planner/plandb"
)

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	queries *plandb.Queries
	db      *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{
		queries: plandb.New(d),
		db:      d,
	}
}

// ReplacePlan deletes the user's plan and inserts assignments in one transaction.
func (r *PlanRepository) ReplacePlan(ctx context.Context, userID int64, assignments []Assignment) error {
	return database.InTx(ctx, r.db, func(tx *sql.Tx) error {
		q := r.queries.WithTx(tx)
		if err := q.DeleteUserMeals(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete plan for user %d: %w", userID, err)
		}
		for _, a := range assignments {
			status := a.Status
			if status == "" {
				status = StatusPending
			}
			err := q.InsertUserMeal(ctx, plandb.InsertUserMealParams{
				UserID:   userID,
				Day:      int64(a.Day),
				MealType: string(a.Slot),
				MealID:   a.MealID,
				Status:   string(status),
			})
			if err != nil {
				return fmt.Errorf("failed to insert day %d %s for user %d: %w", a.Day, a.Slot, userID, err)
			}
		}
		return nil
	})
}

// ListPlanEntries returns the user's assignments joined with their meals.
func (r *PlanRepository) ListPlanEntries(ctx context.Context, userID int64) ([]Entry, error) {
	rows, err := r.queries.ListUserPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan for user %d: %w", userID, err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			Assignment: Assignment{
				UserID: row.UserID,
				Day:    int(row.Day),
				Slot:   SlotName(row.MealType),
				MealID: row.MealID,
				Status: Status(row.Status),
			},
			Meal: meal.Meal{
				ID:           row.MealID,
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
			},
		})
	}
	return entries, nil
}

// UpdateStatus marks one planned meal as done, skipped or pending again.
func (r *PlanRepository) UpdateStatus(ctx context.Context, userID int64, day int, slot SlotName, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	n, err := r.queries.UpdateUserMealStatus(ctx, plandb.UpdateUserMealStatusParams{
		Status:   string(status),
		UserID:   userID,
		Day:      int64(day),
		MealType: string(slot),
	})
	if err != nil {
		return fmt.Errorf("failed to update status for user %d: %w", userID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: day %d %s", ErrAssignmentNotFound, day, slot)
	}
	return nil
}

// SwapMeal replaces the meal of one planned slot and resets it to pending.
func (r *PlanRepository) SwapMeal(ctx context.Context, userID int64, day int, slot SlotName, mealID int64) error {
	n, err := r.queries.SwapUserMeal(ctx, plandb.SwapUserMealParams{
		MealID:   mealID,
		UserID:   userID,
		Day:      int64(day),
		MealType: string(slot),
	})
	if err != nil {
		return fmt.Errorf("failed to swap meal for user %d: %w", userID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: day %d %s", ErrAssignmentNotFound, day, slot)
	}
	return nil
}
