package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"fitmate/internal/meal"
)

const catalogPattern = "**/*.{yaml,yml}"

var (
	identifierPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	nonSlug           = regexp.MustCompile(`[^a-z0-9]+`)
)

var (
	// ErrInvalidEntry is returned for catalog entries that cannot become meals.
	ErrInvalidEntry = errors.New("invalid catalog entry")
	// ErrEntryNotFound is returned by Load for an unknown identifier.
	ErrEntryNotFound = errors.New("catalog entry not found")
)

// CatalogEntry is the on-disk form of a meal.
type CatalogEntry struct {
	Identifier   string   `yaml:"identifier"`
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	Categories   []string `yaml:"categories,omitempty"`
	PrepTime     int      `yaml:"prep_time,omitempty"`
	Overnight    bool     `yaml:"overnight,omitempty"`
	Equipment    []string `yaml:"equipment,omitempty"`
	Ingredients  []string `yaml:"ingredients,omitempty"`
	Instructions string   `yaml:"instructions,omitempty"`
	Image        string   `yaml:"image,omitempty"`
	SourceURL    string   `yaml:"source_url,omitempty"`

	// Path is the file the entry was loaded from. Empty for new entries.
	Path string `yaml:"-"`
}

// ToMeal validates the entry and converts it. Unknown categories are rejected.
func (e CatalogEntry) ToMeal() (meal.Meal, error) {
	if !identifierPattern.MatchString(e.Identifier) {
		return meal.Meal{}, fmt.Errorf("%w: bad identifier %q", ErrInvalidEntry, e.Identifier)
	}
	if strings.TrimSpace(e.Name) == "" {
		return meal.Meal{}, fmt.Errorf("%w: %s has no name", ErrInvalidEntry, e.Identifier)
	}
	if strings.TrimSpace(e.Type) == "" {
		return meal.Meal{}, fmt.Errorf("%w: %s has no type", ErrInvalidEntry, e.Identifier)
	}

	cats, err := meal.ParseCategories(strings.Join(e.Categories, ";"))
	if err != nil {
		return meal.Meal{}, fmt.Errorf("%w: %s: %w", ErrInvalidEntry, e.Identifier, err)
	}

	return meal.Meal{
		Type:         strings.TrimSpace(e.Type),
		Name:         strings.TrimSpace(e.Name),
		Identifier:   e.Identifier,
		Categories:   cats,
		PrepTime:     e.PrepTime,
		Overnight:    e.Overnight,
		Equipment:    strings.Join(e.Equipment, ", "),
		Ingredients:  strings.Join(e.Ingredients, "; "),
		Instructions: strings.TrimSpace(e.Instructions),
		Image:        e.Image,
	}, nil
}

// Slugify turns a meal name into a catalog identifier.
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// CatalogStore keeps catalog entries as YAML files, one per meal.
type CatalogStore struct {
	basePath string
}

// NewCatalogStore creates a new CatalogStore and ensures the base directory exists.
func NewCatalogStore(basePath string) (*CatalogStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory %s: %w", basePath, err)
	}
	return &CatalogStore{basePath: basePath}, nil
}

func (s *CatalogStore) path(identifier string) string {
	return filepath.Join(s.basePath, identifier+".yaml")
}

// Save writes an entry back to the file it was loaded from, or to
// <identifier>.yaml at the catalog root for new entries.
func (s *CatalogStore) Save(e CatalogEntry) error {
	if !identifierPattern.MatchString(e.Identifier) {
		return fmt.Errorf("%w: bad identifier %q", ErrInvalidEntry, e.Identifier)
	}

	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog entry: %w", err)
	}
	target := e.Path
	if target == "" {
		target = s.path(e.Identifier)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog entry: %w", err)
	}
	return nil
}

// Load returns the entry with identifier from anywhere below the base path.
func (s *CatalogStore) Load(identifier string) (*CatalogEntry, error) {
	e, err := s.find(identifier)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, identifier)
	}
	return e, nil
}

// Exists reports whether any catalog file holds identifier.
func (s *CatalogStore) Exists(identifier string) (bool, error) {
	e, err := s.find(identifier)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

func (s *CatalogStore) find(identifier string) (*CatalogEntry, error) {
	entries, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Identifier == identifier {
			return &entries[i], nil
		}
	}
	return nil, nil
}

// ListAll loads every YAML file below the base path, sorted by path.
func (s *CatalogStore) ListAll() ([]CatalogEntry, error) {
	matches, err := doublestar.Glob(os.DirFS(s.basePath), catalogPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob catalog files: %w", err)
	}
	sort.Strings(matches)

	entries := make([]CatalogEntry, 0, len(matches))
	for _, match := range matches {
		path := filepath.Join(s.basePath, filepath.FromSlash(match))
		e, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		e.Path = path
		if e.Identifier == "" {
			base := filepath.Base(match)
			e.Identifier = strings.TrimSuffix(base, filepath.Ext(base))
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func loadFile(path string) (*CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var e CatalogEntry
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog file %s: %w", path, err)
	}
	return &e, nil
}
