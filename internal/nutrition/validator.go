package nutrition

import (
	"fmt"
	"strconv"
	"strings"
)

// Accepted ranges for user-supplied values. The same ranges are applied to
// numbers coming back from the LLM before they are displayed or stored.
const (
	MinAge, MaxAge           = 10, 120
	MinHeightCm, MaxHeightCm = 100.0, 250.0
	MinWeightKg, MaxWeightKg = 30.0, 300.0
	MinCalories, MaxCalories = 500, 10000
	MinMacroG, MaxMacroG     = 0.0, 1000.0
)

const msgNotANumber = "Please enter a valid number"

// ValidateAge parses and range-checks an age string. Malformed input is a
// normal outcome reported through the boolean, never a panic; callers must
// branch on ok only, the message is purely for display.
func ValidateAge(raw string) (bool, int, string) {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return false, 0, msgNotANumber
	}
	if age < MinAge || age > MaxAge {
		return false, 0, fmt.Sprintf("Age must be between %d and %d years", MinAge, MaxAge)
	}
	return true, age, ""
}

// ValidateHeight parses a height in centimeters. A comma decimal separator
// is treated as a dot.
func ValidateHeight(raw string) (bool, float64, string) {
	height, err := parseDecimal(raw)
	if err != nil {
		return false, 0, msgNotANumber
	}
	if height < MinHeightCm || height > MaxHeightCm {
		return false, 0, fmt.Sprintf("Height must be between %.0f and %.0f cm", MinHeightCm, MaxHeightCm)
	}
	return true, height, ""
}

// ValidateWeight parses a weight in kilograms, used for both current and
// target weight.
func ValidateWeight(raw string) (bool, float64, string) {
	weight, err := parseDecimal(raw)
	if err != nil {
		return false, 0, msgNotANumber
	}
	if weight < MinWeightKg || weight > MaxWeightKg {
		return false, 0, fmt.Sprintf("Weight must be between %.0f and %.0f kg", MinWeightKg, MaxWeightKg)
	}
	return true, weight, ""
}

// ValidateCalories parses a daily calorie amount.
func ValidateCalories(raw string) (bool, int, string) {
	calories, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return false, 0, msgNotANumber
	}
	if calories < MinCalories || calories > MaxCalories {
		return false, 0, fmt.Sprintf("Calories must be between %d and %d kcal", MinCalories, MaxCalories)
	}
	return true, calories, ""
}

// ValidateMacro parses a macronutrient amount in grams.
func ValidateMacro(raw string) (bool, float64, string) {
	macro, err := parseDecimal(raw)
	if err != nil {
		return false, 0, msgNotANumber
	}
	if macro < MinMacroG || macro > MaxMacroG {
		return false, 0, fmt.Sprintf("Value must be between %.0f and %.0f grams", MinMacroG, MaxMacroG)
	}
	return true, macro, ""
}

// CaloriesInRange reports whether an already-numeric calorie value falls in
// the accepted range. Used to sanity-check LLM output.
func CaloriesInRange(calories int) bool {
	return calories >= MinCalories && calories <= MaxCalories
}

// MacroInRange reports whether an already-numeric gram value falls in the
// accepted range. Used to sanity-check LLM output.
func MacroInRange(grams float64) bool {
	return grams >= MinMacroG && grams <= MaxMacroG
}

func parseDecimal(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return strconv.ParseFloat(normalized, 64)
}
