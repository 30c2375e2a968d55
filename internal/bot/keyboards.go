package bot

// Button is one pressable option. Action is the identifier delivered back
// as a callback event; the transport owns the rendering.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Keyboard is a grid of buttons attached to a reply.
type Keyboard struct {
	Rows [][]Button `json:"rows"`
}

// Callback action identifiers. Prefixed actions carry their value after
// the underscore (e.g. "gender_male").
const (
	ActionMainMenu        = "main_menu"
	ActionHelp            = "help"
	ActionProfile         = "profile"
	ActionEditProfile     = "edit_profile"
	ActionUpdateWeight    = "update_weight"
	ActionLogFood         = "log_food"
	ActionConfirmFood     = "confirm_food"
	ActionCancelFood      = "cancel_food"
	ActionTodayStats      = "today_stats"
	ActionNutritionPlan   = "nutrition_plan"
	ActionMealSuggestions = "meal_suggestions"
	ActionAdjustPlan      = "adjust_plan"
	ActionRecalculatePlan = "recalculate_plan"
	ActionAIChat          = "ai_chat"
	ActionSettings        = "settings"

	actionPrefixGender   = "gender_"
	actionPrefixActivity = "activity_"
	actionPrefixGoal     = "goal_"
	actionPrefixMethod   = "method_"
)

// MainMenu is the top-level navigation keyboard
func MainMenu() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "My profile", Action: ActionProfile}, {Label: "My plan", Action: ActionNutritionPlan}},
		{{Label: "Log food", Action: ActionLogFood}, {Label: "Today's stats", Action: ActionTodayStats}},
		{{Label: "What to cook?", Action: ActionMealSuggestions}, {Label: "Ask AI", Action: ActionAIChat}},
		{{Label: "Settings", Action: ActionSettings}, {Label: "Help", Action: ActionHelp}},
	}}
}

// BackToMenu offers only the way back
func BackToMenu() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Main menu", Action: ActionMainMenu}},
	}}
}

// GenderSelection for the profile flow
func GenderSelection() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Male", Action: actionPrefixGender + "male"}, {Label: "Female", Action: actionPrefixGender + "female"}},
	}}
}

// ActivitySelection for the profile flow
func ActivitySelection() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Sedentary", Action: actionPrefixActivity + "sedentary"}},
		{{Label: "Light (1-3x/week)", Action: actionPrefixActivity + "light"}},
		{{Label: "Moderate (3-5x/week)", Action: actionPrefixActivity + "moderate"}},
		{{Label: "High (6-7x/week)", Action: actionPrefixActivity + "active"}},
		{{Label: "Very high (2x/day)", Action: actionPrefixActivity + "very_active"}},
	}}
}

// GoalSelection for the profile flow
func GoalSelection() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Lose weight", Action: actionPrefixGoal + "lose"}},
		{{Label: "Maintain weight", Action: actionPrefixGoal + "maintain"}},
		{{Label: "Gain muscle", Action: actionPrefixGoal + "gain"}},
	}}
}

// MethodSelection for the profile flow
func MethodSelection() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Mifflin-St Jeor", Action: actionPrefixMethod + "mifflin"}},
		{{Label: "Harris-Benedict", Action: actionPrefixMethod + "harris"}},
	}}
}

// FoodConfirm asks whether to save the analyzed entry
func FoodConfirm() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Save", Action: ActionConfirmFood}, {Label: "Cancel", Action: ActionCancelFood}},
	}}
}

// ProfileActions follows the profile view
func ProfileActions() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Edit profile", Action: ActionEditProfile}},
		{{Label: "Update weight", Action: ActionUpdateWeight}},
		{{Label: "Main menu", Action: ActionMainMenu}},
	}}
}

// PlanActions follows the plan view
func PlanActions() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Adjust plan", Action: ActionAdjustPlan}},
		{{Label: "Recalculate from profile", Action: ActionRecalculatePlan}},
		{{Label: "Main menu", Action: ActionMainMenu}},
	}}
}

// StatsActions follows the daily stats view
func StatsActions() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Log food", Action: ActionLogFood}},
		{{Label: "What to cook?", Action: ActionMealSuggestions}},
		{{Label: "Main menu", Action: ActionMainMenu}},
	}}
}

// SettingsMenu lists the configuration entry points
func SettingsMenu() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Edit profile", Action: ActionEditProfile}},
		{{Label: "Recalculate plan", Action: ActionRecalculatePlan}},
		{{Label: "Main menu", Action: ActionMainMenu}},
	}}
}

// FillProfile is shown to users without a profile yet
func FillProfile() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: "Fill in profile", Action: ActionProfile}},
	}}
}
