package user

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownField is returned for profile keys that do not exist.
var ErrUnknownField = errors.New("unknown profile field")

// Profile holds the personal attributes a user may record.
type Profile struct {
	Name               string
	Lastname           string
	Age                int
	Gender             string
	Height             float64
	HeightUnit         string
	Weight             float64
	WeightUnit         string
	DietaryPreferences string
	Allergies          string
}

// User is a registered FitMate user.
type User struct {
	ID         int64
	TelegramID int64
	Username   string
	Profile    Profile
	CreatedAt  time.Time
}

// DisplayName prefers the profile name over the username.
func (u User) DisplayName() string {
	if u.Profile.Name != "" {
		return strings.TrimSpace(u.Profile.Name + " " + u.Profile.Lastname)
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("user %d", u.ID)
}

var profileSetters = map[string]func(p *Profile, v string) error{
	"name":     func(p *Profile, v string) error { p.Name = v; return nil },
	"lastname": func(p *Profile, v string) error { p.Lastname = v; return nil },
	"gender":   func(p *Profile, v string) error { p.Gender = v; return nil },
	"age": func(p *Profile, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 130 {
			return fmt.Errorf("age must be a number between 0 and 130")
		}
		p.Age = n
		return nil
	},
	"height": func(p *Profile, v string) error {
		value, unit, err := parseMeasure(v, []string{"cm", "in"})
		if err != nil {
			return fmt.Errorf("height: %w", err)
		}
		p.Height, p.HeightUnit = value, unit
		return nil
	},
	"weight": func(p *Profile, v string) error {
		value, unit, err := parseMeasure(v, []string{"kg", "lb"})
		if err != nil {
			return fmt.Errorf("weight: %w", err)
		}
		p.Weight, p.WeightUnit = value, unit
		return nil
	},
	"diet":      func(p *Profile, v string) error { p.DietaryPreferences = v; return nil },
	"allergies": func(p *Profile, v string) error { p.Allergies = v; return nil },
}

// ProfileFields lists the keys accepted by Set.
func ProfileFields() []string {
	keys := make([]string, 0, len(profileSetters))
	for k := range profileSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates one field from its text form, e.g. ("height", "180cm").
func (p *Profile) Set(key, value string) error {
	setter, ok := profileSetters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return setter(p, strings.TrimSpace(value))
}

// parseMeasure reads "180cm" or "180 cm"; the first unit is the default.
func parseMeasure(raw string, units []string) (float64, string, error) {
	raw = strings.ToLower(strings.ReplaceAll(raw, " ", ""))
	unit := units[0]
	for _, u := range units {
		if strings.HasSuffix(raw, u) {
			unit = u
			raw = strings.TrimSuffix(raw, u)
			break
		}
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 0, "", fmt.Errorf("expected a positive number in %s", strings.Join(units, " or "))
	}
	return value, unit, nil
}
