package planner

import "time"

// MealSlotItem is one entry in a meal slot. AI-generated entries are stubs
// until a full recipe record backs them.
type MealSlotItem struct {
	ID              string             `json:"id"`
	RecipeID        string             `json:"recipeId,omitempty"`
	Title           string             `json:"title"`
	EstimatedMacros map[string]float64 `json:"estimatedMacros,omitempty"`
	Servings        float64            `json:"servings"`
	IsStub          bool               `json:"isStub"`
	Source          string             `json:"source"`
	KeyIngredients  []string           `json:"keyIngredients,omitempty"`
}

// DayPlan represents the plan for a single day.
type DayPlan struct {
	ID        string                    `json:"id"`
	Date      string                    `json:"date"`
	DayOfWeek string                    `json:"dayOfWeek"`
	Meals     map[string][]MealSlotItem `json:"meals"`
}

// MealPlanDocument is a persisted meal plan, keyed under its owning user.
// The user id is always assigned server-side from the authenticated caller.
type MealPlanDocument struct {
	PlanID    string     `json:"planId"`
	Name      string     `json:"name"`
	StartDate string     `json:"startDate"`
	EndDate   string     `json:"endDate"`
	Days      []DayPlan  `json:"days"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UserID    string     `json:"userId"`
}

// AiMealItem is one meal entry as proposed by the model.
type AiMealItem struct {
	Title           string             `json:"title"`
	EstimatedMacros map[string]float64 `json:"estimatedMacros,omitempty"`
	Servings        float64            `json:"servings,omitempty"`
	KeyIngredients  []string           `json:"keyIngredients,omitempty"`
}

// AiDayPlan is the model's proposal for one day: a mapping from meal type
// (breakfast, lunch, dinner, snack) to the meals filling that slot.
type AiDayPlan struct {
	Day   string                  `json:"day"`
	Meals map[string][]AiMealItem `json:"meals"`
}

// GenerationResult is the model's proposed plan fragment, recovered from its
// raw output but not yet merged into a MealPlanDocument.
type GenerationResult struct {
	Plan         []AiDayPlan `json:"plan"`
	SummaryNotes string      `json:"summaryNotes,omitempty"`
	Usage        ModelUsage  `json:"-"`
}

// ModelUsage carries token accounting for the call that produced a result.
type ModelUsage struct {
	PromptTokens     int
	CompletionTokens int
	Model            string
}
