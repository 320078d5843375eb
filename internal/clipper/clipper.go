package clipper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"fitmate/internal/llm"
	"fitmate/internal/meal"
	"fitmate/internal/storage"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// maxContentChars caps the page text sent to the model.
const maxContentChars = 20000

var excessiveLines = regexp.MustCompile(`\n{3,}`)

// ErrAlreadyImported is returned when the catalog already has the meal.
var ErrAlreadyImported = errors.New("meal already in catalog")

// CatalogWriter persists catalog entries as files.
type CatalogWriter interface {
	Save(e storage.CatalogEntry) error
	Exists(identifier string) (bool, error)
}

// MealWriter persists meals to the database.
type MealWriter interface {
	Save(ctx context.Context, m meal.Meal) (int64, error)
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	catalog    CatalogWriter
	meals      MealWriter
	textGen    llm.TextGenerator
	httpClient *http.Client
	converter  *md.Converter
}

// ExtractedMeal represents the data structured by the AI.
type ExtractedMeal struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Categories  []string `json:"categories"`
	PrepTime    int      `json:"prep_time"`
	Overnight   bool     `json:"overnight"`
	Equipment   []string `json:"equipment"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Image       string   `json:"image"`
}

// NewClipper creates a new Clipper instance.
func NewClipper(catalog CatalogWriter, meals MealWriter, textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		catalog:    catalog,
		meals:      meals,
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		converter:  md.NewConverter("", true, nil),
	}
}

// ClipURL fetches the URL, extracts the meal using AI, and adds it to the
// catalog file store and the meal table.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*meal.Meal, llm.TokenUsage, error) {
	// 1. Fetch and Clean HTML
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, llm.TokenUsage{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	// 2. Extract Data via the LLM
	resp, err := c.textGen.GenerateContent(ctx, buildPrompt(content))
	if err != nil {
		return nil, llm.TokenUsage{}, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted ExtractedMeal
	if err := json.Unmarshal([]byte(llm.StripCodeFence(resp.Content)), &extracted); err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}

	// 3. Validate as a catalog entry
	entry := toCatalogEntry(extracted, url)
	m, err := entry.ToMeal()
	if err != nil {
		return nil, resp.Usage, err
	}
	exists, err := c.catalog.Exists(entry.Identifier)
	if err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to check catalog: %w", err)
	}
	if exists {
		return nil, resp.Usage, fmt.Errorf("%w: %s", ErrAlreadyImported, entry.Identifier)
	}

	// 4. Save to the catalog and the database
	if err := c.catalog.Save(entry); err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to save catalog entry: %w", err)
	}
	id, err := c.meals.Save(ctx, m)
	if err != nil {
		return nil, resp.Usage, err
	}
	m.ID = id

	return &m, resp.Usage, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := c.toMarkdown(doc.Find("body"))
	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		text = "Image: " + img + "\n" + text
	}
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}
	return text, nil
}

// toMarkdown keeps list and heading structure so ingredients and steps stay apart.
// Falls back to collapsed plain text when nothing converts.
func (c *Clipper) toMarkdown(body *goquery.Selection) string {
	markdown := c.converter.Convert(body)
	markdown = excessiveLines.ReplaceAllString(strings.TrimSpace(markdown), "\n\n")
	if markdown == "" {
		return strings.Join(strings.Fields(body.Text()), " ")
	}
	return markdown
}

func buildPrompt(content string) string {
	var cats []string
	for _, c := range meal.Categories() {
		cats = append(cats, string(c))
	}

	return fmt.Sprintf(`
You are a recipe extraction expert. Extract the meal from the following page content.
"type" must be one of: Breakfast, Lunch, Dinner, Lunch/Dinner.
"categories" may only use: %s.
"prep_time" is in minutes. "overnight" is true when the meal must rest overnight.
Return the result strictly as a JSON object with this structure:
{
  "name": "Meal Name",
  "type": "Breakfast",
  "categories": ["category_1"],
  "prep_time": 15,
  "overnight": false,
  "equipment": ["item 1", ...],
  "ingredients": ["item 1", "item 2", ...],
  "steps": ["Step 1 description", "Step 2 description", ...],
  "image": "image URL or empty"
}

Page Content:
%s
`, strings.Join(cats, ", "), content)
}

// toCatalogEntry keeps only the categories the catalog knows about.
func toCatalogEntry(x ExtractedMeal, sourceURL string) storage.CatalogEntry {
	var cats []string
	for _, raw := range x.Categories {
		c, err := meal.ParseCategory(raw)
		if err != nil {
			log.Printf("Clipper dropped %v from %s", err, sourceURL)
			continue
		}
		cats = append(cats, string(c))
	}

	steps := make([]string, 0, len(x.Steps))
	for _, s := range x.Steps {
		s = strings.TrimRight(strings.TrimSpace(s), ".")
		if s != "" {
			steps = append(steps, s+".")
		}
	}

	return storage.CatalogEntry{
		Identifier:   storage.Slugify(x.Name),
		Name:         x.Name,
		Type:         x.Type,
		Categories:   cats,
		PrepTime:     x.PrepTime,
		Overnight:    x.Overnight,
		Equipment:    x.Equipment,
		Ingredients:  x.Ingredients,
		Instructions: strings.Join(steps, "\n"),
		Image:        x.Image,
		SourceURL:    sourceURL,
	}
}
