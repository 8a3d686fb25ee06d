package request

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Mode selects which request shape is being validated.
type Mode int

const (
	// ModeFullPlan validates a request for a complete multi-day plan.
	ModeFullPlan Mode = iota
	// ModeChunk validates a request for one fixed 7-day chunk.
	ModeChunk
)

// Result is the outcome of validating a request. Errors accumulates every
// field problem found; validation never stops at the first one.
type Result struct {
	Errors []string
}

// IsValid reports whether the request passed validation.
func (r Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Validate checks a meal-plan request for the given mode. As a side effect
// it normalizes the request in place: display-string aliases on enumerated
// preference fields are rewritten to their canonical values, and the legacy
// maxTimePerMealMinutes field is folded into maxPrepTimePerMealMinutes and
// cleared.
func Validate(req *MealPlanRequest, mode Mode) Result {
	var result Result

	if req == nil {
		result.Errors = append(result.Errors, "request body is required")
		return result
	}

	switch mode {
	case ModeFullPlan:
		if req.DurationDays == nil {
			result.Errors = append(result.Errors, "durationDays is required")
		} else if *req.DurationDays <= 0 || !isInteger(*req.DurationDays) {
			result.Errors = append(result.Errors, "durationDays must be a positive integer")
		}
	case ModeChunk:
		if req.ChunkIndex == nil {
			result.Errors = append(result.Errors, "chunkIndex is required")
		} else if *req.ChunkIndex < 0 || !isInteger(*req.ChunkIndex) {
			result.Errors = append(result.Errors, "chunkIndex must be a non-negative integer")
		}
	}

	if req.PlanStartDate != "" {
		if _, err := time.Parse("2006-01-02", req.PlanStartDate); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("planStartDate %q must be a date in YYYY-MM-DD format", req.PlanStartDate))
		}
	}

	validateMacros(req.TargetMacros, "targetMacros", &result)

	for i, mealType := range req.MealTypesToInclude {
		if strings.TrimSpace(mealType) == "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("mealTypesToInclude[%d] must be a non-empty string", i))
		}
	}

	if req.NumberOfSnacks != nil {
		if *req.NumberOfSnacks < 0 || !isInteger(*req.NumberOfSnacks) {
			result.Errors = append(result.Errors, "numberOfSnacks must be a non-negative integer")
		}
	}

	// Fold the legacy prep-time field into the canonical one. The canonical
	// field wins when both are supplied.
	if req.MaxTimePerMealMinutes != nil {
		if req.MaxPrepTimePerMealMinutes == nil {
			req.MaxPrepTimePerMealMinutes = req.MaxTimePerMealMinutes
		}
		req.MaxTimePerMealMinutes = nil
	}
	if req.MaxPrepTimePerMealMinutes != nil && *req.MaxPrepTimePerMealMinutes <= 0 {
		result.Errors = append(result.Errors, "maxPrepTimePerMealMinutes must be a positive number")
	}

	if req.Preferences != nil {
		validatePreferences(req.Preferences, &result)
	}

	return result
}

// validateMacros checks that every key is in the allowed macro set and every
// value is non-negative. Unknown keys are an error, not silently dropped.
func validateMacros(macros TargetMacros, field string, result *Result) {
	for _, key := range sortedKeys(macros) {
		if !allowedMacroKeys[key] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s contains unknown key %q", field, key))
			continue
		}
		if macros[key] < 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s.%s must be a non-negative number", field, key))
		}
	}
}

func validatePreferences(prefs *Preferences, result *Result) {
	normalizeEnum(&prefs.RecipeSourcePriority, recipeSourceEnum, result)
	normalizeEnum(&prefs.CookTimePreference, cookTimeEnum, result)
	normalizeEnum(&prefs.PrepVolume, prepVolumeEnum, result)
	normalizeEnum(&prefs.ActivityLevel, activityLevelEnum, result)
	normalizeEnum(&prefs.CookingExperience, cookingExperienceEnum, result)

	var invalidDays []string
	for _, day := range prefs.AvailableCookingDays {
		if !weekdaySet[day] {
			invalidDays = append(invalidDays, day)
		}
	}
	if len(invalidDays) > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("preferences.availableCookingDays contains invalid day names: %s",
				strings.Join(invalidDays, ", ")))
	}
}

// normalizeEnum rewrites a display-string alias to its canonical value, then
// checks enum membership. The rewrite happens before the check so a request
// supplying only the alias still passes.
func normalizeEnum(value *string, spec enumSpec, result *Result) {
	if *value == "" {
		return
	}
	if canonical, ok := spec.aliases[*value]; ok {
		*value = canonical
	}
	if !spec.canonical[*value] {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s has unsupported value %q", spec.field, *value))
	}
}

func isInteger(f float64) bool {
	return f == math.Trunc(f)
}

// sortedKeys gives macro errors a stable order across runs.
func sortedKeys(macros TargetMacros) []string {
	keys := make([]string, 0, len(macros))
	for key := range macros {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
