package planner

import (
	"errors"
	"fmt"
	"strings"

	"fitmate/internal/meal"
)

var (
	// ErrInsufficientMeals means some (day, slot) had no eligible meal left.
	ErrInsufficientMeals = errors.New("not enough meals in the catalog to satisfy your plan")
	// ErrNoGoals is returned when a plan is requested without goal categories.
	ErrNoGoals = errors.New("at least one goal category is required")
	// ErrInvalidDuration is returned for a plan shorter than one day.
	ErrInvalidDuration = errors.New("plan duration must be at least one day")
	// ErrAssignmentNotFound is returned when a (day, slot) is not in the user's plan.
	ErrAssignmentNotFound = errors.New("meal not found in plan")
	// ErrInvalidStatus is returned for statuses outside pending/done/skipped.
	ErrInvalidStatus = errors.New("invalid meal status")
)

// InsufficientMealsError records the first slot that could not be filled.
type InsufficientMealsError struct {
	Day  int
	Slot SlotName
}

func (e *InsufficientMealsError) Error() string {
	return fmt.Sprintf("%v (day %d, %s)", ErrInsufficientMeals, e.Day, e.Slot)
}

func (e *InsufficientMealsError) Unwrap() error {
	return ErrInsufficientMeals
}

// SlotName is a labeled position within a day.
type SlotName string

const (
	Breakfast SlotName = "Breakfast"
	Lunch     SlotName = "Lunch"
	Dinner    SlotName = "Dinner"
)

// ParseSlotName matches a slot name case-insensitively.
func ParseSlotName(raw string) (SlotName, error) {
	for _, s := range []SlotName{Breakfast, Lunch, Dinner} {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown slot %q", ErrAssignmentNotFound, raw)
}

// SlotType is the meal classification a slot draws from.
func (s SlotName) SlotType() meal.SlotType {
	if s == Breakfast {
		return meal.SlotTypeBreakfast
	}
	return meal.SlotTypeLunchDinner
}

func slotRank(s SlotName) int {
	switch s {
	case Breakfast:
		return 1
	case Lunch:
		return 2
	case Dinner:
		return 3
	default:
		return 4
	}
}

// SlotConfig is the "meals per day" choice of a planning request.
type SlotConfig string

const (
	SlotsBreakfast         SlotConfig = "Breakfast"
	SlotsLunch             SlotConfig = "Lunch"
	SlotsDinner            SlotConfig = "Dinner"
	SlotsAll               SlotConfig = "All 3"
	SlotsBreakfastAndLunch SlotConfig = "Breakfast & Lunch"
	SlotsBreakfastDinner   SlotConfig = "Breakfast & Dinner"
	SlotsLunchAndDinner    SlotConfig = "Lunch & Dinner"
)

var slotConfigs = []SlotConfig{
	SlotsAll,
	SlotsBreakfast,
	SlotsLunch,
	SlotsDinner,
	SlotsBreakfastAndLunch,
	SlotsBreakfastDinner,
	SlotsLunchAndDinner,
}

// SlotConfigs lists the known configurations in menu order.
func SlotConfigs() []SlotConfig {
	out := make([]SlotConfig, len(slotConfigs))
	copy(out, slotConfigs)
	return out
}

// ParseSlotConfig matches raw case-insensitively against the known
// configurations. Anything else resolves to all three slots.
func ParseSlotConfig(raw string) SlotConfig {
	raw = strings.Join(strings.Fields(raw), " ")
	for _, c := range slotConfigs {
		if strings.EqualFold(raw, string(c)) {
			return c
		}
	}
	return SlotsAll
}

// Slots resolves the configuration into the ordered slots of one day.
func (c SlotConfig) Slots() []SlotName {
	switch c {
	case SlotsBreakfast:
		return []SlotName{Breakfast}
	case SlotsLunch:
		return []SlotName{Lunch}
	case SlotsDinner:
		return []SlotName{Dinner}
	case SlotsBreakfastAndLunch:
		return []SlotName{Breakfast, Lunch}
	case SlotsBreakfastDinner:
		return []SlotName{Breakfast, Dinner}
	case SlotsLunchAndDinner:
		return []SlotName{Lunch, Dinner}
	default:
		return []SlotName{Breakfast, Lunch, Dinner}
	}
}

// Status is the progress of one planned meal.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
)

// ParseStatus validates a status string.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusDone, StatusSkipped:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Resolved reports whether the meal was done or skipped.
func (s Status) Resolved() bool {
	return s == StatusDone || s == StatusSkipped
}

// Assignment maps one (user, day, slot) to a meal.
type Assignment struct {
	UserID int64
	Day    int
	Slot   SlotName
	MealID int64
	Status Status
}

// Entry is an assignment joined with its meal.
type Entry struct {
	Assignment
	Meal meal.Meal
}

// DayPlan groups the entries of a single day in slot order.
type DayPlan struct {
	Day     int
	Entries []Entry
}

// Complete reports whether every meal of the day is done or skipped.
func (d DayPlan) Complete() bool {
	for _, e := range d.Entries {
		if !e.Status.Resolved() {
			return false
		}
	}
	return true
}
