package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mealplan-service/internal/llm"
	"mealplan-service/internal/request"
)

type mockTextGenerator struct {
	response string
	err      error
	prompts  []string
}

func (m *mockTextGenerator) Generate(ctx context.Context, req llm.GenerateRequest) (llm.ContentResponse, error) {
	m.prompts = append(m.prompts, req.Prompt)
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{Content: m.response, Usage: llm.TokenUsage{Model: req.Model}}, nil
}

type mockStore struct {
	docs map[string]any
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[string]any)}
}

func (m *mockStore) Get(ctx context.Context, path string, v any) error {
	return errors.New("not implemented")
}

func (m *mockStore) Set(ctx context.Context, path string, v any, merge bool) error {
	m.docs[path] = v
	return nil
}

func (m *mockStore) RemoveElements(ctx context.Context, path, field string, elements []string) error {
	return nil
}

func chunkParams(days int) GenerationParams {
	idx := float64(0)
	return GenerationParams{
		Days:      days,
		StartDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), // a Monday
		Request:   &request.MealPlanRequest{ChunkIndex: &idx},
	}
}

func TestGenerateChunk(t *testing.T) {
	gen := &mockTextGenerator{
		response: "```json\n" + `{
			"plan": [
				{"day": "Monday", "meals": {"breakfast": [{"title": "Oatmeal", "servings": 1}], "dinner": [{"title": "Chili", "servings": 2}]}},
				{"day": "Tuesday", "meals": {"breakfast": [{"title": "Eggs"}], "dinner": [{"title": "Chili leftovers"}]}}
			],
			"summaryNotes": "Simple week."
		}` + "\n```",
	}
	p := NewPlanner(gen, newMockStore(), nil, "gemini-1.5-flash")

	result, err := p.GenerateChunk(context.Background(), chunkParams(2))
	if err != nil {
		t.Fatalf("GenerateChunk failed: %v", err)
	}
	if len(result.Plan) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(result.Plan))
	}
	if result.SummaryNotes != "Simple week." {
		t.Errorf("Expected summary notes, got %q", result.SummaryNotes)
	}
	if result.Plan[0].Meals["breakfast"][0].Title != "Oatmeal" {
		t.Errorf("Expected Oatmeal for Monday breakfast, got %+v", result.Plan[0].Meals)
	}
}

func TestGenerateChunkAcceptsBareDayArray(t *testing.T) {
	gen := &mockTextGenerator{
		response: `[{"day": "Monday", "meals": {"dinner": [{"title": "Stir fry"}]}}]`,
	}
	p := NewPlanner(gen, newMockStore(), nil, "gemini-1.5-flash")

	result, err := p.GenerateChunk(context.Background(), chunkParams(1))
	if err != nil {
		t.Fatalf("GenerateChunk failed: %v", err)
	}
	if len(result.Plan) != 1 {
		t.Fatalf("Expected 1 day, got %d", len(result.Plan))
	}
}

func TestGenerateChunkUpstreamErrorsPassThrough(t *testing.T) {
	for name, upstream := range map[string]error{
		"SafetyBlocked": llm.ErrSafetyBlocked,
		"Upstream":      &llm.UpstreamError{Model: "gemini-1.5-flash", Err: errors.New("rate limited")},
	} {
		t.Run(name, func(t *testing.T) {
			gen := &mockTextGenerator{err: upstream}
			p := NewPlanner(gen, newMockStore(), nil, "gemini-1.5-flash")

			_, err := p.GenerateChunk(context.Background(), chunkParams(1))
			if !errors.Is(err, upstream) {
				t.Fatalf("Expected upstream error surfaced unchanged, got %v", err)
			}
			if errors.Is(err, ErrMalformedAIOutput) {
				t.Error("Upstream failure must not be conflated with malformed output")
			}
		})
	}
}

func TestGenerateChunkMalformedOutput(t *testing.T) {
	cases := map[string]string{
		"Unparseable":   "sorry, I cannot create a plan today",
		"EmptyPlan":     `{"plan": []}`,
		"NoMealMapping": `{"plan": [{"day": "Monday"}]}`,
		"WrongShape":    `{"plan": {"day": "Monday"}}`,
	}
	for name, response := range cases {
		t.Run(name, func(t *testing.T) {
			gen := &mockTextGenerator{response: response}
			p := NewPlanner(gen, newMockStore(), nil, "gemini-1.5-flash")

			_, err := p.GenerateChunk(context.Background(), chunkParams(1))
			if !errors.Is(err, ErrMalformedAIOutput) {
				t.Fatalf("Expected ErrMalformedAIOutput, got %v", err)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	now := time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC) // a Wednesday

	t.Run("FullDefaultsToNextMonday", func(t *testing.T) {
		duration := float64(10)
		req := &request.MealPlanRequest{DurationDays: &duration}
		start, days, err := Window(req, request.ModeFullPlan, now)
		if err != nil {
			t.Fatalf("Window failed: %v", err)
		}
		if days != 10 {
			t.Errorf("Expected 10 days, got %d", days)
		}
		if start.Weekday() != time.Monday || !start.After(now.AddDate(0, 0, -1)) {
			t.Errorf("Expected next Monday, got %s (%s)", start.Format("2006-01-02"), start.Weekday())
		}
	})

	t.Run("ChunkOffsetsByIndex", func(t *testing.T) {
		idx := float64(2)
		req := &request.MealPlanRequest{ChunkIndex: &idx, PlanStartDate: "2026-09-07"}
		start, days, err := Window(req, request.ModeChunk, now)
		if err != nil {
			t.Fatalf("Window failed: %v", err)
		}
		if days != 7 {
			t.Errorf("Expected a fixed 7-day chunk, got %d", days)
		}
		if got := start.Format("2006-01-02"); got != "2026-09-21" {
			t.Errorf("Expected chunk 2 to start 2026-09-21, got %s", got)
		}
	})

	t.Run("BadStartDate", func(t *testing.T) {
		idx := float64(0)
		req := &request.MealPlanRequest{ChunkIndex: &idx, PlanStartDate: "next tuesday"}
		if _, _, err := Window(req, request.ModeChunk, now); err == nil {
			t.Fatal("Expected an error for an unparseable planStartDate")
		}
	})
}

func TestGeneratePlanPersistsDocument(t *testing.T) {
	gen := &mockTextGenerator{
		response: `{"plan": [
			{"day": "Monday", "meals": {"breakfast": [{"title": "Toast"}], "dinner": [{"title": "Curry", "servings": 2, "keyIngredients": ["chickpeas", "rice"]}]}},
			{"day": "Tuesday", "meals": {"breakfast": [{"title": "Yogurt"}], "dinner": [{"title": "Curry leftovers"}]}}
		]}`,
	}
	store := newMockStore()
	p := NewPlanner(gen, store, nil, "gemini-1.5-flash")

	idx := float64(0)
	req := &request.MealPlanRequest{ChunkIndex: &idx, PlanStartDate: "2026-09-07"}

	doc, result, err := p.GeneratePlan(context.Background(), "user-42", req, request.ModeChunk)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if result == nil || len(result.Plan) != 2 {
		t.Fatal("Expected the generation result alongside the document")
	}

	if doc.UserID != "user-42" {
		t.Errorf("Expected server-assigned userId, got %q", doc.UserID)
	}
	// The model returned 2 days for a 7-day window; the document only covers
	// what was actually proposed.
	if len(doc.Days) != 2 {
		t.Fatalf("Expected 2 day entries, got %d", len(doc.Days))
	}
	if doc.Days[0].Date != "2026-09-07" || doc.Days[0].DayOfWeek != "Monday" {
		t.Errorf("Expected first day dated 2026-09-07 Monday, got %s %s", doc.Days[0].Date, doc.Days[0].DayOfWeek)
	}
	if doc.Days[1].Date != "2026-09-08" {
		t.Errorf("Expected consecutive dates, got %s", doc.Days[1].Date)
	}

	dinner := doc.Days[0].Meals["dinner"][0]
	if !dinner.IsStub || dinner.Source != "ai" {
		t.Errorf("Expected AI meals stored as stubs, got %+v", dinner)
	}
	if dinner.Servings != 2 {
		t.Errorf("Expected servings carried over, got %v", dinner.Servings)
	}
	if doc.Days[0].Meals["breakfast"][0].Servings != 1 {
		t.Error("Expected servings to default to 1")
	}

	expectedPath := "users/user-42/mealPlans/" + doc.PlanID
	if _, ok := store.docs[expectedPath]; !ok {
		t.Errorf("Expected document persisted at %s, stored paths: %v", expectedPath, store.docs)
	}
}

func TestBuildPlanPromptIncludesConstraints(t *testing.T) {
	snacks := float64(2)
	prep := float64(30)
	params := GenerationParams{
		Days:      7,
		StartDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		Request: &request.MealPlanRequest{
			TargetMacros:              request.TargetMacros{"calories": 2000, "protein": 150},
			MealTypesToInclude:        []string{"breakfast", "dinner"},
			NumberOfSnacks:            &snacks,
			MaxPrepTimePerMealMinutes: &prep,
			DietaryNotes:              "no shellfish",
			CuisinePreference:         "Mediterranean",
			Preferences: &request.Preferences{
				CookTimePreference:   request.CookTimeQuick,
				AvailableCookingDays: []string{"Monday", "Thursday"},
			},
		},
	}

	prompt := buildPlanPrompt(params)
	for _, fragment := range []string{
		"7-day meal plan",
		"2026-09-07",
		"calories: 2000",
		"protein: 150",
		"breakfast, dinner",
		"Snacks per day: 2",
		"30 minutes",
		"no shellfish",
		"Mediterranean",
		"quick",
		"Monday, Thursday",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("Expected prompt to contain %q", fragment)
		}
	}
}
