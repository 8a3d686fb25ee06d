package request

import (
	"strings"
	"testing"
)

func float(f float64) *float64 {
	return &f
}

func TestValidateFullPlan(t *testing.T) {
	t.Run("NilRequest", func(t *testing.T) {
		result := Validate(nil, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected nil request to be invalid")
		}
	})

	t.Run("Valid", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays: float(7),
			TargetMacros: TargetMacros{"calories": 2200, "protein": 140},
		}
		result := Validate(req, ModeFullPlan)
		if !result.IsValid() {
			t.Fatalf("Expected valid request, got errors: %v", result.Errors)
		}
	})

	t.Run("MissingDuration", func(t *testing.T) {
		result := Validate(&MealPlanRequest{}, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected missing durationDays to fail")
		}
	})

	t.Run("NonPositiveDuration", func(t *testing.T) {
		result := Validate(&MealPlanRequest{DurationDays: float(0)}, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected durationDays 0 to fail")
		}
	})

	t.Run("FractionalDuration", func(t *testing.T) {
		// A fractional duration would truncate to a shorter (possibly empty)
		// plan window downstream; it has to be rejected here.
		result := Validate(&MealPlanRequest{DurationDays: float(0.5)}, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected fractional durationDays to fail")
		}
		result = Validate(&MealPlanRequest{DurationDays: float(3.7)}, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected fractional durationDays to fail")
		}
	})

	t.Run("PlanStartDate", func(t *testing.T) {
		req := &MealPlanRequest{DurationDays: float(7), PlanStartDate: "2026-09-07"}
		if result := Validate(req, ModeFullPlan); !result.IsValid() {
			t.Fatalf("Expected valid planStartDate to pass, got %v", result.Errors)
		}

		req = &MealPlanRequest{DurationDays: float(7), PlanStartDate: "07/09/2026"}
		result := Validate(req, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected malformed planStartDate to fail")
		}
		if !strings.Contains(strings.Join(result.Errors, "; "), "planStartDate") {
			t.Errorf("Expected errors to mention planStartDate, got %v", result.Errors)
		}
	})
}

func TestValidateChunk(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		result := Validate(&MealPlanRequest{ChunkIndex: float(0)}, ModeChunk)
		if !result.IsValid() {
			t.Fatalf("Expected chunkIndex 0 to be valid, got %v", result.Errors)
		}
	})

	t.Run("DurationNotRequired", func(t *testing.T) {
		result := Validate(&MealPlanRequest{ChunkIndex: float(2)}, ModeChunk)
		if !result.IsValid() {
			t.Fatalf("Expected chunk request without durationDays to pass, got %v", result.Errors)
		}
	})

	t.Run("Negative", func(t *testing.T) {
		result := Validate(&MealPlanRequest{ChunkIndex: float(-1)}, ModeChunk)
		if result.IsValid() {
			t.Fatal("Expected negative chunkIndex to fail")
		}
	})

	t.Run("NonInteger", func(t *testing.T) {
		result := Validate(&MealPlanRequest{ChunkIndex: float(1.5)}, ModeChunk)
		if result.IsValid() {
			t.Fatal("Expected fractional chunkIndex to fail")
		}
	})
}

func TestValidateAccumulatesAllErrors(t *testing.T) {
	req := &MealPlanRequest{
		TargetMacros:       TargetMacros{"fiber": 30},
		MealTypesToInclude: []string{"breakfast", ""},
		NumberOfSnacks:     float(-1),
	}
	result := Validate(req, ModeFullPlan)

	if len(result.Errors) != 4 {
		t.Fatalf("Expected 4 accumulated errors, got %d: %v", len(result.Errors), result.Errors)
	}
	joined := strings.Join(result.Errors, "; ")
	for _, fragment := range []string{"durationDays", "fiber", "mealTypesToInclude[1]", "numberOfSnacks"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("Expected errors to mention %q, got %v", fragment, result.Errors)
		}
	}
}

func TestValidateMacros(t *testing.T) {
	t.Run("UnknownKeyNamed", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays: float(3),
			TargetMacros: TargetMacros{"sugar": 20},
		}
		result := Validate(req, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected unknown macro key to fail")
		}
		if !strings.Contains(result.Errors[0], `"sugar"`) {
			t.Errorf("Expected the unknown key to be named, got %q", result.Errors[0])
		}
	})

	t.Run("NegativeValue", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays: float(3),
			TargetMacros: TargetMacros{"protein": -5},
		}
		result := Validate(req, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected negative macro value to fail")
		}
	})

	t.Run("ZeroValueAllowed", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays: float(3),
			TargetMacros: TargetMacros{"fat": 0},
		}
		result := Validate(req, ModeFullPlan)
		if !result.IsValid() {
			t.Fatalf("Expected zero macro value to pass, got %v", result.Errors)
		}
	})
}

func TestValidateLegacyPrepTimeAlias(t *testing.T) {
	t.Run("Rewritten", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays:          float(3),
			MaxTimePerMealMinutes: float(45),
		}
		result := Validate(req, ModeFullPlan)
		if !result.IsValid() {
			t.Fatalf("Expected legacy alias to pass, got %v", result.Errors)
		}
		if req.MaxPrepTimePerMealMinutes == nil || *req.MaxPrepTimePerMealMinutes != 45 {
			t.Error("Expected alias value moved into maxPrepTimePerMealMinutes")
		}
		if req.MaxTimePerMealMinutes != nil {
			t.Error("Expected legacy field cleared after rewrite")
		}
	})

	t.Run("CanonicalWins", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays:              float(3),
			MaxPrepTimePerMealMinutes: float(30),
			MaxTimePerMealMinutes:     float(45),
		}
		Validate(req, ModeFullPlan)
		if *req.MaxPrepTimePerMealMinutes != 30 {
			t.Errorf("Expected canonical value kept, got %v", *req.MaxPrepTimePerMealMinutes)
		}
	})

	t.Run("NonPositive", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays:              float(3),
			MaxPrepTimePerMealMinutes: float(0),
		}
		result := Validate(req, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected non-positive prep time to fail")
		}
	})
}

func TestValidateEnumAliases(t *testing.T) {
	req := &MealPlanRequest{
		DurationDays: float(7),
		Preferences: &Preferences{
			RecipeSourcePriority: "Discover New Recipes",
			CookTimePreference:   "Quick (under 30 minutes)",
			PrepVolume:           "Batch Prep",
			ActivityLevel:        "Moderately Active",
			CookingExperience:    "Beginner",
		},
	}

	result := Validate(req, ModeFullPlan)
	if !result.IsValid() {
		t.Fatalf("Expected alias-only request to pass, got %v", result.Errors)
	}

	prefs := req.Preferences
	if prefs.RecipeSourcePriority != SourceDiscoverNew {
		t.Errorf("Expected recipeSourcePriority rewritten, got %q", prefs.RecipeSourcePriority)
	}
	if prefs.CookTimePreference != CookTimeQuick {
		t.Errorf("Expected cookTimePreference rewritten, got %q", prefs.CookTimePreference)
	}
	if prefs.PrepVolume != PrepBatch {
		t.Errorf("Expected prepVolume rewritten, got %q", prefs.PrepVolume)
	}
	if prefs.ActivityLevel != ActivityModerate {
		t.Errorf("Expected activityLevel rewritten, got %q", prefs.ActivityLevel)
	}
	if prefs.CookingExperience != ExperienceBeginner {
		t.Errorf("Expected cookingExperience rewritten, got %q", prefs.CookingExperience)
	}
}

func TestValidateEnumCanonicalAndUnknown(t *testing.T) {
	t.Run("CanonicalAccepted", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays: float(7),
			Preferences:  &Preferences{ActivityLevel: ActivityVeryActive},
		}
		result := Validate(req, ModeFullPlan)
		if !result.IsValid() {
			t.Fatalf("Expected canonical value to pass, got %v", result.Errors)
		}
	})

	t.Run("UnknownRejected", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays: float(7),
			Preferences: &Preferences{
				RecipeSourcePriority: "whatever sounds good",
				CookTimePreference:   "speedy",
			},
		}
		result := Validate(req, ModeFullPlan)
		if len(result.Errors) != 2 {
			t.Fatalf("Expected 2 enum errors, got %v", result.Errors)
		}
	})

	t.Run("EmptySkipped", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays: float(7),
			Preferences:  &Preferences{},
		}
		result := Validate(req, ModeFullPlan)
		if !result.IsValid() {
			t.Fatalf("Expected empty preferences to pass, got %v", result.Errors)
		}
	})
}

func TestValidateCookingDays(t *testing.T) {
	t.Run("ValidSubset", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays: float(7),
			Preferences:  &Preferences{AvailableCookingDays: []string{"Monday", "Wednesday", "Sunday"}},
		}
		result := Validate(req, ModeFullPlan)
		if !result.IsValid() {
			t.Fatalf("Expected weekday subset to pass, got %v", result.Errors)
		}
	})

	t.Run("InvalidNamesReportedInOrder", func(t *testing.T) {
		req := &MealPlanRequest{
			DurationDays: float(7),
			Preferences: &Preferences{
				AvailableCookingDays: []string{"Funday", "Tuesday", "Blursday"},
			},
		}
		result := Validate(req, ModeFullPlan)
		if result.IsValid() {
			t.Fatal("Expected invalid day names to fail")
		}
		if !strings.Contains(result.Errors[0], "Funday, Blursday") {
			t.Errorf("Expected invalid names listed in order, got %q", result.Errors[0])
		}
		// The array itself is left intact.
		if len(req.Preferences.AvailableCookingDays) != 3 {
			t.Error("Expected availableCookingDays to be preserved")
		}
	})
}
