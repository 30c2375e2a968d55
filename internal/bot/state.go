package bot

// State identifies where a user is in the dialogue. The primary path walks
// the profile states in order; side states are reached from Idle through
// button presses.
//
// Text routing is explicit: every state with a dedicated text handler is
// listed in Router.routeText, and anything else — including Idle — falls
// through to the AI chat handler. That fallback is deliberate: the
// assistant always has some handler for free text and never drops input.
type State string

const (
	StateIdle State = "idle"

	// Profile creation, one field per turn
	StateProfileAge           State = "profile_age"
	StateProfileGender        State = "profile_gender"
	StateProfileHeight        State = "profile_height"
	StateProfileCurrentWeight State = "profile_current_weight"
	StateProfileTargetWeight  State = "profile_target_weight"
	StateProfileActivity      State = "profile_activity"
	StateProfileGoal          State = "profile_goal"
	StateProfileMethod        State = "profile_method"

	// Plan adjustment
	StateAdjustNutrition State = "adjust_nutrition"

	// Food logging
	StateFoodLogWaiting State = "food_log_waiting"
	StateFoodLogConfirm State = "food_log_confirm"

	// Meal planning
	StateMealPlanRequest State = "meal_plan_request"

	// Open-ended chat; sticky until the user navigates away
	StateAIChat State = "ai_chat"
)
