package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/cidbot/backend/internal/models"
	"github.com/cidbot/backend/internal/service"
)

// User-facing message templates. Deterministic text only; AI-generated
// elaborations are appended by handlers where available.

const (
	msgWelcome = `Hi! I'm C.I.D. — Care, Insight, Discipline.
Your AI nutrition and habits coach.
I'll help you calculate your targets, track your meals and stay on course.`

	msgWelcomeHasProfile = "\n\nYour profile is already set up."

	msgHelp = `HELP

Main features:

My profile — manage your personal data
My plan — view and adjust your nutrition targets
Log food — record a meal (text or voice)
Today's stats — your progress for the day
What to cook? — get meal recommendations
Ask AI — free-form questions about nutrition

Voice messages work anywhere text does: describe what you ate or ask what to cook.

Commands:
/start — main menu
/help — this help`

	msgMainMenu = "Main menu\n\nChoose an action:"

	msgProfileCreateIntro = `PROFILE SETUP

To calculate your personal nutrition plan I need to know a bit more about you.

Please enter your age (in years):`

	msgProfileEditIntro = `EDIT PROFILE

Enter your age (in years):`

	msgAskGender        = "Select your gender:"
	msgAskHeight        = "Enter your height (in centimeters):"
	msgAskCurrentWeight = "Enter your current weight (in kilograms):"
	msgAskTargetWeight  = "Enter your target weight (in kilograms):"
	msgAskActivity      = "Select your physical activity level:"
	msgAskGoal          = "What is your goal?"
	msgAskMethod        = "Select the calculation method:"

	msgUpdateWeightIntro = `WEIGHT UPDATE

Enter your current weight (in kg):`

	msgCreatingPlan = "Creating your profile and calculating your nutrition plan..."

	msgLogFoodIntro = `FOOD LOG

Describe what you ate. You can:

- type it as text
- send a voice message

Examples:
- "Oatmeal with banana and nuts"
- "Chicken breast 150g, buckwheat 100g, vegetable salad"
- "Two eggs, avocado toast"

Include rough amounts for a more accurate estimate.`

	msgAnalyzingFood = "Analyzing the food and estimating its nutrition..."

	msgFoodCancelled = "Entry cancelled"

	msgNothingPending = "There is no pending entry. Use \"Log food\" to start."

	msgMealIntro = `WHAT TO COOK?

Tell me:
- What do you have in the fridge?
- What do you feel like eating?
- Which meal are you planning?

I'll pick a recipe that fits your remaining daily allowance.

Type it or send a voice message.`

	msgPickingMeal = "Picking the perfect meal for you..."

	msgAdjustIntro = `PLAN ADJUSTMENT

Describe what you want to change in your nutrition plan.

Examples:
- "Increase calories by 200"
- "I need more protein"
- "Lower the carbs"
- "I want a more aggressive deficit"

I'll adjust the plan safely and effectively.`

	msgAdjusting = "Adjusting your plan..."

	msgAIChatIntro = `AI ASSISTANT

Ask me anything about nutrition, health or fitness!

Examples:
- "How do I speed up my metabolism?"
- "Why am I not losing weight?"
- "Which foods are high in protein?"

I'm here to help.`

	msgThinking = "Thinking..."

	msgNoPlanYet = "You don't have a nutrition plan yet. Set up your profile first!"

	msgNoProfileYet = "You don't have a profile yet. Set it up from the main menu first!"

	msgSettings = `SETTINGS

Available actions:
- Edit profile
- Recalculate your plan

What would you like to change?`

	msgGenericError = "Something went wrong. Please try again."

	msgAnalysisFailed = "I couldn't analyze that. Try describing the meal in more detail."

	msgAdjustFailed = "I couldn't adjust the plan. Try phrasing the request differently."

	msgChatFailed = "I couldn't reach the assistant. Please try again."

	msgTranscriptionFailed = "I couldn't recognize the speech. Please try again."

	msgPlanSaveFailed = `Your profile is saved, but creating the plan failed.

Pick the calculation method again to retry — your answers are kept.`

	msgProfileSaveFailed = "Saving the profile failed. Pick the calculation method again to retry."

	msgRestartFlow = "That step has expired. Open your profile from the main menu to start over."
)

var activityTitles = map[string]string{
	"sedentary":   "Sedentary",
	"light":       "Light",
	"moderate":    "Moderate",
	"active":      "High",
	"very_active": "Very high",
}

var goalTitles = map[string]string{
	"lose":     "Lose weight",
	"maintain": "Maintain weight",
	"gain":     "Gain muscle",
}

func titleOr(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

func formatProfile(p *models.UserProfile) string {
	gender := "Male"
	if p.Gender == "female" {
		gender = "Female"
	}
	return fmt.Sprintf(`YOUR PROFILE

Gender: %s
Age: %d years
Height: %.0f cm
Current weight: %.1f kg
Target weight: %.1f kg
Activity: %s
Goal: %s`,
		gender, p.Age, p.HeightCm, p.CurrentWeightKg, p.TargetWeightKg,
		titleOr(activityTitles, p.ActivityLevel), titleOr(goalTitles, p.Goal))
}

func formatPlanCreated(plan *models.NutritionPlan, editing bool) string {
	header := "PROFILE SAVED!"
	if editing {
		header = "PROFILE UPDATED!"
	}
	return header + fmt.Sprintf(`

YOUR NUTRITION PLAN:

Calories: %d kcal/day
Protein: %.1f g
Fats: %.1f g
Carbs: %.1f g

%s

Now you can start tracking your meals!`,
		plan.TargetCalories, plan.ProteinG, plan.FatsG, plan.CarbsG,
		plan.MethodologyExplanation)
}

func formatPlan(plan *models.NutritionPlan) string {
	return fmt.Sprintf(`YOUR NUTRITION PLAN

Daily targets:
Calories: %d kcal
Protein: %.1f g
Fats: %.1f g
Carbs: %.1f g

Metabolism:
- Basal (BMR): %.0f kcal/day
- Total expenditure (TDEE): %.0f kcal/day

%s`,
		plan.TargetCalories, plan.ProteinG, plan.FatsG, plan.CarbsG,
		plan.BMR, plan.TDEE, plan.MethodologyExplanation)
}

func formatWeightUpdated(weightKg float64) string {
	return fmt.Sprintf("Weight updated: %.1f kg", weightKg)
}

func formatFoodAnalysis(pending *PendingFood) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FOOD ANALYSIS\n\n%s\n\nEstimated content:\n", pending.Name)
	fmt.Fprintf(&b, "Calories: %s kcal\n", formatOptional(pending.Calories, 0))
	fmt.Fprintf(&b, "Protein: %s g\n", formatOptional(pending.Protein, 1))
	fmt.Fprintf(&b, "Fats: %s g\n", formatOptional(pending.Fats, 1))
	fmt.Fprintf(&b, "Carbs: %s g\n", formatOptional(pending.Carbs, 1))
	if pending.PortionNote != "" {
		fmt.Fprintf(&b, "\n%s\n", pending.PortionNote)
	}
	b.WriteString("\nSave this entry?")
	return b.String()
}

func formatOptional(v *float64, decimals int) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

func formatFoodSaved(summary *service.DailySummary, plan *models.NutritionPlan) string {
	if plan == nil {
		return fmt.Sprintf(`ENTRY SAVED!

Consumed today:
%.0f kcal
%.1f g protein
%.1f g fats
%.1f g carbs`,
			summary.Calories, summary.Protein, summary.Fats, summary.Carbs)
	}

	return fmt.Sprintf(`ENTRY SAVED!

TODAY SO FAR:

Consumed:
Calories: %.0f / %d kcal
Protein: %.1f / %.1f g
Fats: %.1f / %.1f g
Carbs: %.1f / %.1f g

Remaining:
%.0f kcal
%.1f g protein
%.1f g fats
%.1f g carbs`,
		summary.Calories, plan.TargetCalories,
		summary.Protein, plan.ProteinG,
		summary.Fats, plan.FatsG,
		summary.Carbs, plan.CarbsG,
		float64(plan.TargetCalories)-summary.Calories,
		plan.ProteinG-summary.Protein,
		plan.FatsG-summary.Fats,
		plan.CarbsG-summary.Carbs)
}

func formatTodayStats(summary *service.DailySummary, plan *models.NutritionPlan, logs []models.FoodLog) string {
	var b strings.Builder
	fmt.Fprintf(&b, `TODAY'S STATS

Your targets:
%d kcal
%.1f g protein
%.1f g fats
%.1f g carbs

Consumed:
%.0f kcal (%.0f%%)
%.1f g protein (%.0f%%)
%.1f g fats (%.0f%%)
%.1f g carbs (%.0f%%)

Entries today: %d
`,
		plan.TargetCalories, plan.ProteinG, plan.FatsG, plan.CarbsG,
		summary.Calories, percent(summary.Calories, float64(plan.TargetCalories)),
		summary.Protein, percent(summary.Protein, plan.ProteinG),
		summary.Fats, percent(summary.Fats, plan.FatsG),
		summary.Carbs, percent(summary.Carbs, plan.CarbsG),
		summary.Count)

	if len(logs) > 0 {
		b.WriteString("\nLatest meals:\n")
		start := 0
		if len(logs) > 5 {
			start = len(logs) - 5
		}
		for _, log := range logs[start:] {
			b.WriteString(fmt.Sprintf("- %s — %s\n", log.LoggedAt.Format("15:04"), truncate(log.Description, 50)))
		}
	}
	return b.String()
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func formatMealIdea(idea *service.MealIdea) string {
	marker := "Fits your plan."
	if !idea.FitsPlan {
		marker = "Slightly outside your remaining allowance."
	}
	return fmt.Sprintf(`RECOMMENDATION

%s

%s

Ingredients:
%s

Cooking:
%s

Per portion:
%.0f kcal
%.1f g protein
%.1f g fats
%.1f g carbs

%s
%s`,
		idea.Name, idea.Description, idea.Ingredients, idea.Instructions,
		idea.Calories, idea.Protein, idea.Fats, idea.Carbs,
		marker, idea.Note)
}

func formatPlanAdjusted(result *service.AdjustResult) string {
	return fmt.Sprintf(`PLAN ADJUSTED!

NEW TARGETS:
Calories: %d kcal
Protein: %.1f g
Fats: %.1f g
Carbs: %.1f g

%s`,
		result.TargetCalories, result.ProteinG, result.FatsG, result.CarbsG,
		result.Explanation)
}

func formatTranscript(text string) string {
	return fmt.Sprintf("Recognized: %q", text)
}

func formatValidationError(message string) string {
	return fmt.Sprintf("%s\n\nPlease try again:", message)
}

// clock alias so tests can pin "today"
type clock func() time.Time
