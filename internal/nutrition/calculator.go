package nutrition

import (
	"fmt"
	"math"
)

// Gender values
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Activity levels
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// Goals
const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

// Calculation methods
const (
	MethodMifflin = "mifflin"
	MethodHarris  = "harris"
)

// activityMultipliers maps an activity level to its TDEE coefficient.
var activityMultipliers = map[string]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// macroSplit is the percentage allocation of target calories for one goal.
// The three shares always sum to 1.
type macroSplit struct {
	protein float64
	fat     float64
	carbs   float64
}

var macroSplits = map[string]macroSplit{
	GoalLose:     {protein: 0.35, fat: 0.25, carbs: 0.40},
	GoalGain:     {protein: 0.30, fat: 0.25, carbs: 0.45},
	GoalMaintain: {protein: 0.30, fat: 0.30, carbs: 0.40},
}

// Macros holds a macronutrient breakdown in grams.
type Macros struct {
	ProteinG float64
	FatsG    float64
	CarbsG   float64
}

// Plan is the aggregate result of a full nutrition calculation.
type Plan struct {
	BMR            float64
	TDEE           float64
	TargetCalories int
	Macros
}

// BMRMifflin computes basal metabolic rate with the Mifflin-St Jeor
// formula, rounded to 2 decimal places.
func BMRMifflin(weightKg, heightCm float64, ageYears int, gender string) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if gender == GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return round2(bmr)
}

// BMRHarris computes basal metabolic rate with the revised Harris-Benedict
// formula, rounded to 2 decimal places.
func BMRHarris(weightKg, heightCm float64, ageYears int, gender string) float64 {
	var bmr float64
	if gender == GenderMale {
		bmr = 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*float64(ageYears)
	} else {
		bmr = 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*float64(ageYears)
	}
	return round2(bmr)
}

// TDEE scales a BMR by the activity coefficient. An unknown activity level
// falls back to sedentary rather than failing.
func TDEE(bmr float64, activityLevel string) float64 {
	multiplier, ok := activityMultipliers[activityLevel]
	if !ok {
		multiplier = activityMultipliers[ActivitySedentary]
	}
	return round2(bmr * multiplier)
}

// TargetCalories applies the goal adjustment: a 15% deficit for losing,
// a 15% surplus for gaining, unchanged for maintaining. The result is
// truncated toward zero, not rounded.
func TargetCalories(tdee float64, goal string) int {
	switch goal {
	case GoalLose:
		return int(tdee * 0.85)
	case GoalGain:
		return int(tdee * 1.15)
	default:
		return int(tdee)
	}
}

// CalculateMacros splits the calorie target into protein, fat and carb
// grams using 4/9/4 kcal per gram, each rounded to 1 decimal place.
// Because the gram values are derived independently, reconstructing the
// calories from them drifts slightly from the target; that is expected.
func CalculateMacros(targetCalories int, goal string) Macros {
	split, ok := macroSplits[goal]
	if !ok {
		split = macroSplits[GoalMaintain]
	}
	calories := float64(targetCalories)
	return Macros{
		ProteinG: round1(calories * split.protein / 4),
		FatsG:    round1(calories * split.fat / 9),
		CarbsG:   round1(calories * split.carbs / 4),
	}
}

// FullPlan composes BMR, TDEE, target calories and macros into a complete
// plan. An unrecognized method falls back to Harris-Benedict. Pure function:
// identical inputs always produce identical output.
func FullPlan(weightKg, heightCm float64, ageYears int, gender, activityLevel, goal, method string) Plan {
	var bmr float64
	if method == MethodMifflin {
		bmr = BMRMifflin(weightKg, heightCm, ageYears, gender)
	} else {
		bmr = BMRHarris(weightKg, heightCm, ageYears, gender)
	}

	tdee := TDEE(bmr, activityLevel)
	target := TargetCalories(tdee, goal)

	return Plan{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: target,
		Macros:         CalculateMacros(target, goal),
	}
}

var activityDescriptions = map[string]string{
	ActivitySedentary:  "sedentary lifestyle (coefficient 1.2)",
	ActivityLight:      "light activity 1-3 times a week (coefficient 1.375)",
	ActivityModerate:   "moderate activity 3-5 times a week (coefficient 1.55)",
	ActivityActive:     "high activity 6-7 times a week (coefficient 1.725)",
	ActivityVeryActive: "very high activity, training twice a day (coefficient 1.9)",
}

var goalDescriptions = map[string]string{
	GoalLose:     "weight loss (15% deficit)",
	GoalMaintain: "weight maintenance",
	GoalGain:     "muscle gain (15% surplus)",
}

// MethodologyExplanation produces the deterministic narrative of how the
// numbers were derived. It is the non-AI baseline shown alongside any
// AI-generated elaboration.
func MethodologyExplanation(method, goal, activityLevel string, bmr, tdee float64, targetCalories int) string {
	methodName := "Harris-Benedict"
	if method == MethodMifflin {
		methodName = "Mifflin-St Jeor"
	}

	activityText, ok := activityDescriptions[activityLevel]
	if !ok {
		activityText = activityLevel
	}
	goalText, ok := goalDescriptions[goal]
	if !ok {
		goalText = goal
	}

	return fmt.Sprintf(`CALCULATION METHODOLOGY:

- Basal metabolic rate (BMR): %.0f kcal/day
  Calculated with the %s formula.

- Total daily energy expenditure (TDEE): %.0f kcal/day
  BMR multiplied by the activity coefficient (%s).

- Target calories: %d kcal/day
  Adjusted for your goal: %s.

- Macronutrient distribution:
  Optimized for your goal, accounting for absorption efficiency and sustainable progress.`,
		bmr, methodName, tdee, activityText, targetCalories, goalText)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
