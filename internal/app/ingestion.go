package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"fitmate/internal/meal"
	"fitmate/internal/metrics"
)

// SeedReport summarises a catalog seed run.
type SeedReport struct {
	Loaded  int
	Tagged  int
	Skipped int
}

// SeedCatalog loads every catalog file into the meal table. Entries without
// categories are tagged by the LLM when one is configured, and the
// suggested tags are written back to the catalog file.
func (a *App) SeedCatalog(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	entries, err := a.catalog.ListAll()
	if err != nil {
		return report, fmt.Errorf("failed to list catalog: %w", err)
	}
	log.Printf("Found %d catalog entries in %s", len(entries), a.cfg.CatalogPath)

	for _, entry := range entries {
		m, err := entry.ToMeal()
		if err != nil {
			log.Printf("Skipping catalog entry: %v", err)
			report.Skipped++
			continue
		}

		if len(m.Categories) == 0 && a.tagger != nil {
			cats, usage, err := a.tagger.SuggestCategories(ctx, m)
			metrics.ObserveLLMTokens(usage.Model, usage.TotalTokens)
			if err != nil {
				log.Printf("Failed to tag '%s': %v", m.Name, err)
			} else {
				m.Categories = cats
				entry.Categories = categoryStrings(cats)
				if err := a.catalog.Save(entry); err != nil {
					log.Printf("Warning: failed to write tags back to %s: %v", entry.Identifier, err)
				}
				report.Tagged++
			}
			a.pause(ctx)
		}

		if _, err := a.meals.Save(ctx, m); err != nil {
			log.Printf("Failed to save '%s': %v", m.Name, err)
			report.Skipped++
			continue
		}
		report.Loaded++
	}

	log.Printf("Seed complete: %d loaded, %d tagged, %d skipped", report.Loaded, report.Tagged, report.Skipped)
	return report, nil
}

// ImportURL clips a recipe page into the catalog.
func (a *App) ImportURL(ctx context.Context, url string) (*meal.Meal, error) {
	if a.recipeClipper == nil {
		return nil, ErrLLMDisabled
	}

	m, usage, err := a.recipeClipper.ClipURL(ctx, url)
	metrics.ObserveLLMTokens(usage.Model, usage.TotalTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", url, err)
	}
	log.Printf("Imported '%s' (id %d) from %s", m.Name, m.ID, url)
	return m, nil
}

func (a *App) pause(ctx context.Context) {
	if a.llmDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(a.llmDelay):
	}
}

func categoryStrings(cats []meal.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}
