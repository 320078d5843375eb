package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fitmate/internal/llm"
	"fitmate/internal/meal"
	"fitmate/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---
type MockCatalog struct {
	Saved    []storage.CatalogEntry
	Existing map[string]bool
	ListErr  error
}

func (m *MockCatalog) Save(e storage.CatalogEntry) error {
	m.Saved = append(m.Saved, e)
	return nil
}

func (m *MockCatalog) Exists(identifier string) (bool, error) {
	if m.ListErr != nil {
		return false, m.ListErr
	}
	return m.Existing[identifier], nil
}

type MockMeals struct {
	Saved       []meal.Meal
	ShouldError bool
}

func (m *MockMeals) Save(ctx context.Context, ml meal.Meal) (int64, error) {
	if m.ShouldError {
		return 0, fmt.Errorf("mock db error")
	}
	m.Saved = append(m.Saved, ml)
	return int64(len(m.Saved)), nil
}

type MockTextGenerator struct {
	Response    string
	ShouldError bool
	Prompt      string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Prompt = prompt
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response, Usage: llm.TokenUsage{TotalTokens: 10, Model: "mock"}}, nil
}

func htmlServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// --- Tests ---

func TestFetchAndCleanHTML(t *testing.T) {
	ts := htmlServer(t, `
		<html>
			<head>
				<meta property="og:image" content="https://img.example/pie.jpg">
				<script>alert('bad');</script>
			</head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>Mix flour and water.</p>
				<ul><li>200g flour</li><li>100ml water</li></ul>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`)

	c := NewClipper(&MockCatalog{}, &MockMeals{}, &MockTextGenerator{})
	cleanText, err := c.fetchAndCleanHTML(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.NotContains(t, cleanText, "alert('bad')")
	assert.NotContains(t, cleanText, "Buy stuff!")
	assert.NotContains(t, cleanText, "Copyright 2024")
	assert.Contains(t, cleanText, "# Tasty Recipe")
	assert.Contains(t, cleanText, "Mix flour and water.")
	assert.Contains(t, cleanText, "- 200g flour\n- 100ml water")
	assert.True(t, strings.HasPrefix(cleanText, "Image: https://img.example/pie.jpg"))
}

func TestFetchAndCleanHTMLStatus(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	c := NewClipper(&MockCatalog{}, &MockMeals{}, &MockTextGenerator{})
	_, err := c.fetchAndCleanHTML(context.Background(), ts.URL)
	assert.ErrorContains(t, err, "status 404")
}

func TestClipURL_Success(t *testing.T) {
	aiResponse := "```json\n" + `{"name": "Mock Pie", "type": "Dinner", "categories": ["high protein", "paleo"],
		"prep_time": 60, "equipment": ["oven"], "ingredients": ["apple", "flour"], "steps": ["Mix.", "Bake"]}` + "\n```"

	catalog := &MockCatalog{}
	meals := &MockMeals{}
	ai := &MockTextGenerator{Response: aiResponse}
	c := NewClipper(catalog, meals, ai)

	ts := htmlServer(t, "<html><body>Some Content</body></html>")

	m, usage, err := c.ClipURL(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, "Mock Pie", m.Name)
	assert.Equal(t, "mock-pie", m.Identifier)
	assert.Equal(t, []meal.Category{meal.HighProtein}, m.Categories)
	assert.Equal(t, []string{"Mix", "Bake"}, meal.InstructionSteps(m.Instructions))
	assert.Equal(t, 10, usage.TotalTokens)
	assert.Contains(t, ai.Prompt, "Some Content")

	require.Len(t, catalog.Saved, 1)
	assert.Equal(t, ts.URL, catalog.Saved[0].SourceURL)
	assert.Equal(t, []string{"high_protein"}, catalog.Saved[0].Categories)
}

func TestClipURL_Failures(t *testing.T) {
	ts := htmlServer(t, "<html><body>Some Content</body></html>")
	valid := `{"name": "Mock Pie", "type": "Dinner", "ingredients": ["apple"]}`

	t.Run("AIError", func(t *testing.T) {
		c := NewClipper(&MockCatalog{}, &MockMeals{}, &MockTextGenerator{ShouldError: true})
		_, _, err := c.ClipURL(context.Background(), ts.URL)
		assert.ErrorContains(t, err, "ai extraction failed")
	})

	t.Run("BadJSON", func(t *testing.T) {
		c := NewClipper(&MockCatalog{}, &MockMeals{}, &MockTextGenerator{Response: "not json"})
		_, _, err := c.ClipURL(context.Background(), ts.URL)
		assert.ErrorContains(t, err, "failed to parse AI response")
	})

	t.Run("MissingType", func(t *testing.T) {
		catalog := &MockCatalog{}
		c := NewClipper(catalog, &MockMeals{}, &MockTextGenerator{Response: `{"name": "Pie"}`})
		_, _, err := c.ClipURL(context.Background(), ts.URL)
		assert.ErrorIs(t, err, storage.ErrInvalidEntry)
		assert.Empty(t, catalog.Saved)
	})

	t.Run("AlreadyImported", func(t *testing.T) {
		catalog := &MockCatalog{Existing: map[string]bool{"mock-pie": true}}
		c := NewClipper(catalog, &MockMeals{}, &MockTextGenerator{Response: valid})
		_, _, err := c.ClipURL(context.Background(), ts.URL)
		assert.ErrorIs(t, err, ErrAlreadyImported)
	})

	t.Run("CatalogUnreadable", func(t *testing.T) {
		catalog := &MockCatalog{ListErr: errors.New("permission denied")}
		c := NewClipper(catalog, &MockMeals{}, &MockTextGenerator{Response: valid})
		_, _, err := c.ClipURL(context.Background(), ts.URL)
		assert.ErrorContains(t, err, "failed to check catalog")
		assert.NotErrorIs(t, err, ErrAlreadyImported)
		assert.Empty(t, catalog.Saved)
	})

	t.Run("DatabaseError", func(t *testing.T) {
		c := NewClipper(&MockCatalog{}, &MockMeals{ShouldError: true}, &MockTextGenerator{Response: valid})
		_, _, err := c.ClipURL(context.Background(), ts.URL)
		assert.ErrorContains(t, err, "mock db error")
	})
}
