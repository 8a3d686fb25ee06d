package request

// TargetMacros maps macro names to their daily targets. Only the keys in
// allowedMacroKeys are accepted.
type TargetMacros map[string]float64

// Preferences carries the user's enumerated planning preferences. Enum
// fields accept either their canonical machine value or a known
// display-string alias; validation rewrites aliases in place.
type Preferences struct {
	RecipeSourcePriority string   `json:"recipeSourcePriority,omitempty"`
	CookTimePreference   string   `json:"cookTimePreference,omitempty"`
	PrepVolume           string   `json:"prepVolume,omitempty"`
	ActivityLevel        string   `json:"activityLevel,omitempty"`
	CookingExperience    string   `json:"cookingExperience,omitempty"`
	AvailableCookingDays []string `json:"availableCookingDays,omitempty"`
}

// MealPlanRequest is a client request for a full plan or for one chunk of a
// longer plan. Numeric fields are pointers so that absence is
// distinguishable from zero; they arrive as JSON numbers and are
// range-checked during validation.
type MealPlanRequest struct {
	// Full mode
	DurationDays *float64 `json:"durationDays,omitempty"`

	// Chunk mode: which fixed 7-day window to generate.
	ChunkIndex    *float64 `json:"chunkIndex,omitempty"`
	PlanStartDate string   `json:"planStartDate,omitempty"`

	TargetMacros              TargetMacros `json:"targetMacros,omitempty"`
	MealTypesToInclude        []string     `json:"mealTypesToInclude,omitempty"`
	NumberOfSnacks            *float64     `json:"numberOfSnacks,omitempty"`
	MaxPrepTimePerMealMinutes *float64     `json:"maxPrepTimePerMealMinutes,omitempty"`
	// MaxTimePerMealMinutes is a legacy alias for MaxPrepTimePerMealMinutes;
	// validation rewrites it into the canonical field and clears it.
	MaxTimePerMealMinutes *float64 `json:"maxTimePerMealMinutes,omitempty"`

	DietaryNotes      string       `json:"dietaryNotes,omitempty"`
	CuisinePreference string       `json:"cuisinePreference,omitempty"`
	Preferences       *Preferences `json:"preferences,omitempty"`
}

// Canonical recipeSourcePriority values.
const (
	SourceDiscoverNew = "discover_new"
	SourceMyRecipes   = "my_recipes"
	SourceMix         = "mix"
)

// Canonical cookTimePreference values.
const (
	CookTimeQuick    = "quick"
	CookTimeModerate = "moderate"
	CookTimeExtended = "extended"
)

// Canonical prepVolume values.
const (
	PrepCookDaily = "cook_daily"
	PrepBatch     = "batch_prep"
	PrepMixed     = "mixed"
)

// Canonical activityLevel values.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "lightly_active"
	ActivityModerate   = "moderately_active"
	ActivityVeryActive = "very_active"
)

// Canonical cookingExperience values.
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"
)

var allowedMacroKeys = map[string]bool{
	"calories": true,
	"protein":  true,
	"carbs":    true,
	"fat":      true,
}

// Weekdays is the fixed set of names accepted in availableCookingDays, in
// week order.
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var weekdaySet = func() map[string]bool {
	set := make(map[string]bool, len(Weekdays))
	for _, day := range Weekdays {
		set[day] = true
	}
	return set
}()

// enumSpec describes one enumerated preference field: its canonical values
// and the exact display strings accepted as aliases.
type enumSpec struct {
	field     string
	canonical map[string]bool
	aliases   map[string]string
}

var recipeSourceEnum = enumSpec{
	field:     "preferences.recipeSourcePriority",
	canonical: map[string]bool{SourceDiscoverNew: true, SourceMyRecipes: true, SourceMix: true},
	aliases: map[string]string{
		"Discover New Recipes":  SourceDiscoverNew,
		"Prioritize My Recipes": SourceMyRecipes,
		"A Mix of Both":         SourceMix,
	},
}

var cookTimeEnum = enumSpec{
	field:     "preferences.cookTimePreference",
	canonical: map[string]bool{CookTimeQuick: true, CookTimeModerate: true, CookTimeExtended: true},
	aliases: map[string]string{
		"Quick (under 30 minutes)": CookTimeQuick,
		"Moderate (30-60 minutes)": CookTimeModerate,
		"Extended (60+ minutes)":   CookTimeExtended,
	},
}

var prepVolumeEnum = enumSpec{
	field:     "preferences.prepVolume",
	canonical: map[string]bool{PrepCookDaily: true, PrepBatch: true, PrepMixed: true},
	aliases: map[string]string{
		"Cook Fresh Daily": PrepCookDaily,
		"Batch Prep":       PrepBatch,
		"A Little of Both": PrepMixed,
	},
}

var activityLevelEnum = enumSpec{
	field: "preferences.activityLevel",
	canonical: map[string]bool{
		ActivitySedentary:  true,
		ActivityLight:      true,
		ActivityModerate:   true,
		ActivityVeryActive: true,
	},
	aliases: map[string]string{
		"Sedentary":         ActivitySedentary,
		"Lightly Active":    ActivityLight,
		"Moderately Active": ActivityModerate,
		"Very Active":       ActivityVeryActive,
	},
}

var cookingExperienceEnum = enumSpec{
	field: "preferences.cookingExperience",
	canonical: map[string]bool{
		ExperienceBeginner:     true,
		ExperienceIntermediate: true,
		ExperienceAdvanced:     true,
	},
	aliases: map[string]string{
		"Beginner":     ExperienceBeginner,
		"Intermediate": ExperienceIntermediate,
		"Advanced":     ExperienceAdvanced,
	},
}
