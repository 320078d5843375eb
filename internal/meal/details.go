package meal

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	leadingNumbering = regexp.MustCompile(`^[\d()]+\.?\s*`)
	onlyDigits       = regexp.MustCompile(`^\d+$`)
	parenthetical    = regexp.MustCompile(`\(.*?\)`)
)

// Details is the display form of a meal with its free-text fields split
// into clean lists.
type Details struct {
	Meal
	Steps         []string
	IngredientSet []string
	EquipmentSet  []string
}

// NewDetails builds the display lists for m.
func NewDetails(m Meal) Details {
	return Details{
		Meal:          m,
		Steps:         InstructionSteps(m.Instructions),
		IngredientSet: IngredientList(m.Ingredients),
		EquipmentSet:  EquipmentList(m.Equipment),
	}
}

// InstructionSteps splits free-text instructions into sentences, dropping
// step numbering and bare numbers.
func InstructionSteps(raw string) []string {
	raw = strings.ReplaceAll(raw, "\n", ". ")
	var steps []string
	for _, part := range strings.Split(raw, ".") {
		step := strings.TrimSpace(part)
		if step == "" {
			continue
		}
		step = leadingNumbering.ReplaceAllString(step, "")
		if step == "" || onlyDigits.MatchString(step) {
			continue
		}
		steps = append(steps, capitalize(step))
	}
	return steps
}

// IngredientList splits a ';'-separated ingredient column.
func IngredientList(raw string) []string {
	return cleanList(raw, ";")
}

// EquipmentList splits a ','-separated equipment column.
func EquipmentList(raw string) []string {
	return cleanList(raw, ",")
}

func cleanList(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		item := strings.TrimSpace(parenthetical.ReplaceAllString(part, ""))
		if item == "" {
			continue
		}
		out = append(out, capitalize(item))
	}
	return out
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
