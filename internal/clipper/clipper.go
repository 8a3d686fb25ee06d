// Package clipper imports recipes from web pages. It fetches a URL, strips
// the page down to readable text and asks the model to pull the recipe out
// of it.
package clipper

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"mealplan-service/internal/aijson"
	"mealplan-service/internal/docstore"
	"mealplan-service/internal/llm"

	"github.com/PuerkitoBio/goquery"
)

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	textGen    llm.ContentGenerator
	store      docstore.Store
	model      string
	httpClient *http.Client
}

// ExtractedRecipe represents the data structured by the AI.
type ExtractedRecipe struct {
	Title          string   `json:"title"`
	KeyIngredients []string `json:"keyIngredients"`
	Steps          []string `json:"steps"`
	PrepTime       string   `json:"prepTime"`
	Servings       int      `json:"servings"`
}

// ClippedRecipe is the persisted form of an imported recipe.
type ClippedRecipe struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	SourceURL string          `json:"sourceUrl"`
	Recipe    ExtractedRecipe `json:"recipe"`
	ClippedAt time.Time       `json:"clippedAt"`
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.ContentGenerator, store docstore.Store, model string) *Clipper {
	return &Clipper{
		textGen:    textGen,
		store:      store,
		model:      model,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL, extracts the recipe using the model and saves it
// under the user's namespace.
func (c *Clipper) ClipURL(ctx context.Context, userID, url string) (*ClippedRecipe, error) {
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`Extract the recipe details from the following page text.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "keyIngredients": ["item 1", "item 2", ...],
  "steps": ["Step 1 description", "Step 2 description", ...],
  "prepTime": "e.g. 30 mins",
  "servings": 4
}

Page text:
%s
`, content)

	resp, err := c.textGen.Generate(ctx, llm.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Config: llm.GenerationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted ExtractedRecipe
	if err := aijson.ExtractFromFreeText(resp.Content, &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if extracted.Title == "" {
		return nil, fmt.Errorf("extracted recipe has no title")
	}
	if extracted.Servings <= 0 {
		extracted.Servings = 1
	}

	clipped := &ClippedRecipe{
		ID:        "recipe-" + newID(),
		UserID:    userID,
		SourceURL: url,
		Recipe:    extracted,
		ClippedAt: time.Now().UTC(),
	}
	path := fmt.Sprintf("users/%s/clippedRecipes/%s", userID, clipped.ID)
	if err := c.store.Set(ctx, path, clipped, false); err != nil {
		return nil, fmt.Errorf("failed to persist clipped recipe: %w", err)
	}

	return clipped, nil
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

	return doc.Find("body").Text(), nil
}

func newID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
