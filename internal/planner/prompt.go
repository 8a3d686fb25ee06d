package planner

import (
	"fmt"
	"strings"
)

const plannerSystemInstruction = `You are an expert meal planner and nutritionist. You produce practical, varied multi-day meal plans that respect the user's constraints exactly.`

// buildPlanPrompt constructs the generation prompt from normalized request
// parameters.
func buildPlanPrompt(params GenerationParams) string {
	var constraints strings.Builder
	req := params.Request

	if len(req.TargetMacros) > 0 {
		constraints.WriteString("Daily macro targets:\n")
		for _, key := range []string{"calories", "protein", "carbs", "fat"} {
			if value, ok := req.TargetMacros[key]; ok {
				fmt.Fprintf(&constraints, "- %s: %.0f\n", key, value)
			}
		}
	}

	mealTypes := req.MealTypesToInclude
	if len(mealTypes) == 0 {
		mealTypes = []string{"breakfast", "lunch", "dinner"}
	}
	fmt.Fprintf(&constraints, "Meal types to include each day: %s\n", strings.Join(mealTypes, ", "))

	if req.NumberOfSnacks != nil && *req.NumberOfSnacks > 0 {
		fmt.Fprintf(&constraints, "Snacks per day: %.0f (use meal type \"snack\")\n", *req.NumberOfSnacks)
	}
	if req.MaxPrepTimePerMealMinutes != nil {
		fmt.Fprintf(&constraints, "Maximum prep time per meal: %.0f minutes\n", *req.MaxPrepTimePerMealMinutes)
	}
	if req.DietaryNotes != "" {
		fmt.Fprintf(&constraints, "Dietary notes: %s\n", req.DietaryNotes)
	}
	if req.CuisinePreference != "" {
		fmt.Fprintf(&constraints, "Cuisine preference: %s\n", req.CuisinePreference)
	}

	if prefs := req.Preferences; prefs != nil {
		if prefs.CookTimePreference != "" {
			fmt.Fprintf(&constraints, "Cook time preference: %s\n", prefs.CookTimePreference)
		}
		if prefs.PrepVolume != "" {
			fmt.Fprintf(&constraints, "Prep style: %s\n", prefs.PrepVolume)
		}
		if prefs.ActivityLevel != "" {
			fmt.Fprintf(&constraints, "Activity level: %s\n", prefs.ActivityLevel)
		}
		if prefs.CookingExperience != "" {
			fmt.Fprintf(&constraints, "Cooking experience: %s\n", prefs.CookingExperience)
		}
		if len(prefs.AvailableCookingDays) > 0 {
			fmt.Fprintf(&constraints,
				"Cooking is only possible on: %s. Plan leftovers or no-cook meals for the other days.\n",
				strings.Join(prefs.AvailableCookingDays, ", "))
		}
	}

	return fmt.Sprintf(`Create a %d-day meal plan starting on %s (%s).

Constraints:
%s
Instructions:
1. Produce exactly %d day entries, in date order.
2. For every day, fill each requested meal type with one meal.
3. Keep estimated macros realistic for the stated targets.
4. Return the result strictly as a JSON object with this structure:
{
  "plan": [
    {
      "day": "Monday",
      "meals": {
        "breakfast": [{"title": "Meal name", "estimatedMacros": {"calories": 450, "protein": 30, "carbs": 40, "fat": 15}, "servings": 1, "keyIngredients": ["item 1", "item 2"]}]
      }
    }
  ],
  "summaryNotes": "One short paragraph about the plan"
}

Do not include any other text or formatting in your response.`,
		params.Days,
		params.StartDate.Format("2006-01-02"),
		params.StartDate.Weekday(),
		constraints.String(),
		params.Days,
	)
}
