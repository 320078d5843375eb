package shopping

import (
	"sort"
	"strings"

	"fitmate/internal/meal"
	"fitmate/internal/planner"
)

// Item is one line of a shopping list.
type Item struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Meals []string `json:"meals"`
}

// Build aggregates the ingredients of every pending meal in the plan.
// Ingredients are matched case-insensitively and counted once per meal.
func Build(entries []planner.Entry) []Item {
	byKey := make(map[string]*Item)
	for _, e := range entries {
		if e.Status.Resolved() {
			continue
		}
		seen := make(map[string]struct{})
		for _, ingredient := range meal.IngredientList(e.Meal.Ingredients) {
			key := strings.ToLower(ingredient)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			item, ok := byKey[key]
			if !ok {
				item = &Item{Name: ingredient}
				byKey[key] = item
			}
			item.Count++
			if !contains(item.Meals, e.Meal.Name) {
				item.Meals = append(item.Meals, e.Meal.Name)
			}
		}
	}

	items := make([]Item, 0, len(byKey))
	for _, item := range byKey {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
