package meal

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"text/template"

	"fitmate/internal/llm"
)

//go:embed tagger_prompt.md
var taggerPrompt string

var taggerTemplate = template.Must(template.New("tagger").Parse(taggerPrompt))

// ErrNoCategories is returned when the model suggested nothing usable.
var ErrNoCategories = errors.New("no valid categories suggested")

type taggerPromptData struct {
	Meal       Meal
	Categories []Category
}

// Tagger suggests catalog categories for untagged meals.
type Tagger struct {
	textGen llm.TextGenerator
}

// NewTagger creates a new Tagger.
func NewTagger(textGen llm.TextGenerator) *Tagger {
	return &Tagger{textGen: textGen}
}

// SuggestCategories asks the model for categories of m. Suggestions outside
// the canonical enumeration are dropped.
func (t *Tagger) SuggestCategories(ctx context.Context, m Meal) ([]Category, llm.TokenUsage, error) {
	var buf bytes.Buffer
	if err := taggerTemplate.Execute(&buf, taggerPromptData{Meal: m, Categories: Categories()}); err != nil {
		return nil, llm.TokenUsage{}, fmt.Errorf("failed to build tagger prompt: %w", err)
	}

	resp, err := t.textGen.GenerateContent(ctx, buf.String())
	if err != nil {
		return nil, llm.TokenUsage{}, fmt.Errorf("failed to tag meal %s: %w", m.Identifier, err)
	}

	var raw struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFence(resp.Content)), &raw); err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to parse tagger response: %w. Response: %s", err, resp.Content)
	}

	var cats []Category
	seen := make(map[Category]struct{})
	for _, tag := range raw.Categories {
		c, err := ParseCategory(tag)
		if err != nil {
			log.Printf("Tagger suggested %v for meal %s, ignoring", err, m.Identifier)
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cats = append(cats, c)
	}
	if len(cats) == 0 {
		return nil, resp.Usage, fmt.Errorf("%w for meal %s", ErrNoCategories, m.Identifier)
	}
	return cats, resp.Usage, nil
}
