package meal

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// SlotType is the planning classification of a meal.
type SlotType string

const (
	SlotTypeBreakfast   SlotType = "breakfast"
	SlotTypeLunchDinner SlotType = "lunch/dinner"
)

// Category is a dietary or lifestyle tag from the canonical enumeration.
type Category string

const (
	LoseWeight     Category = "lose_weight"
	GainMuscle     Category = "gain_muscle"
	GainWeight     Category = "gain_weight"
	MaintainWeight Category = "maintain_weight"
	OverallHealth  Category = "overall_health"
	LowCarb        Category = "low_carb"
	HighProtein    Category = "high_protein"
	LowFat         Category = "low_fat"
	Vegetarian     Category = "vegetarian"
	Vegan          Category = "vegan"
	Keto           Category = "keto"
	SaveTime       Category = "save_time"
)

var canonicalCategories = []Category{
	LoseWeight,
	GainMuscle,
	GainWeight,
	MaintainWeight,
	OverallHealth,
	LowCarb,
	HighProtein,
	LowFat,
	Vegetarian,
	Vegan,
	Keto,
	SaveTime,
}

// ErrUnknownCategory is returned when a tag is not part of the canonical enumeration.
var ErrUnknownCategory = errors.New("unknown category")

// Categories returns the canonical category enumeration in display order.
func Categories() []Category {
	out := make([]Category, len(canonicalCategories))
	copy(out, canonicalCategories)
	return out
}

// Label renders a category for humans, e.g. "lose_weight" -> "Lose Weight".
func (c Category) Label() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// normalizeTag lowercases a raw tag and turns spaces into underscores,
// so "Lose Weight" and "lose_weight" are the same tag.
func normalizeTag(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	return strings.Join(strings.Fields(tag), "_")
}

// ParseCategory validates a single raw tag against the canonical enumeration.
func ParseCategory(raw string) (Category, error) {
	tag := Category(normalizeTag(raw))
	for _, c := range canonicalCategories {
		if c == tag {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
}

// ParseCategories parses a ';'-separated category column. Empty input
// yields no categories; any unknown tag is an error.
func ParseCategories(raw string) ([]Category, error) {
	var out []Category
	seen := make(map[Category]struct{})
	for _, part := range strings.Split(raw, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// ParseStoredCategories is the lenient variant used for rows already in the
// database: unknown tags are logged and dropped.
func ParseStoredCategories(identifier, raw string) []Category {
	var out []Category
	seen := make(map[Category]struct{})
	for _, part := range strings.Split(raw, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			log.Printf("Warning: meal %s has %v, ignoring tag", identifier, err)
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// FormatCategories joins categories into the stored ';'-separated form.
func FormatCategories(cats []Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ";")
}

// Meal is a catalog entry.
type Meal struct {
	ID           int64
	Type         string // display type: "Breakfast", "Lunch/Dinner", "Lunch", "Dinner"
	Name         string
	Identifier   string
	Categories   []Category
	PrepTime     int // minutes
	Overnight    bool
	Equipment    string
	Ingredients  string
	Instructions string
	Image        string
}

// SlotType collapses the display type into breakfast vs. everything else.
func (m Meal) SlotType() SlotType {
	if strings.EqualFold(strings.TrimSpace(m.Type), "breakfast") {
		return SlotTypeBreakfast
	}
	return SlotTypeLunchDinner
}

// HasCategory reports whether the meal carries c.
func (m Meal) HasCategory(c Category) bool {
	for _, mc := range m.Categories {
		if mc == c {
			return true
		}
	}
	return false
}

// MatchesAny reports whether the meal's categories intersect goals.
func (m Meal) MatchesAny(goals map[Category]struct{}) bool {
	for _, c := range m.Categories {
		if _, ok := goals[c]; ok {
			return true
		}
	}
	return false
}
