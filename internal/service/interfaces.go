package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cidbot/backend/internal/models"
)

// ChatMessage is one exchange in the rolling AI-chat history window.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DailySummary aggregates one calendar day of food logs. Computed on
// demand, never stored.
type DailySummary struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
	Count    int     `json:"count"`
}

// PlanRequest carries the profile fields a plan is generated from.
type PlanRequest struct {
	Age           int
	Gender        string
	HeightCm      float64
	CurrentWeight float64
	TargetWeight  float64
	ActivityLevel string
	Goal          string
	Method        string
}

// PlanResult is a generated plan with its explanation.
type PlanResult struct {
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories int     `json:"target_calories"`
	ProteinG       float64 `json:"protein_grams"`
	FatsG          float64 `json:"fats_grams"`
	CarbsG         float64 `json:"carbs_grams"`
	Explanation    string  `json:"explanation"`
}

// AdjustResult is the outcome of a free-text plan adjustment.
type AdjustResult struct {
	TargetCalories int     `json:"target_calories"`
	ProteinG       float64 `json:"protein_grams"`
	FatsG          float64 `json:"fats_grams"`
	CarbsG         float64 `json:"carbs_grams"`
	Explanation    string  `json:"adjustment_explanation"`
}

// FoodAnalysis is the estimated breakdown of a free-text food description.
// Macro fields are nil when the analysis produced an implausible number.
type FoodAnalysis struct {
	Name        string
	Calories    *float64
	Protein     *float64
	Fats        *float64
	Carbs       *float64
	PortionNote string
}

// MealIdea is an AI meal recommendation against the remaining allowance.
type MealIdea struct {
	Name         string  `json:"meal_name"`
	Description  string  `json:"description"`
	Ingredients  string  `json:"ingredients"`
	Instructions string  `json:"cooking_instructions"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Fats         float64 `json:"fats"`
	Carbs        float64 `json:"carbs"`
	FitsPlan     bool    `json:"fits_plan"`
	Note         string  `json:"recommendation_note"`
}

// IUserService resolves chat-platform identities to accounts.
type IUserService interface {
	GetOrCreate(ctx context.Context, chatKey, username, firstName string) (*models.User, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) error
	UpdateCurrentWeight(ctx context.Context, userID uuid.UUID, weightKg float64) error
}

// IPlanService defines the interface for nutrition plan operations
type IPlanService interface {
	GetActive(ctx context.Context, userID uuid.UUID) (*models.NutritionPlan, error)
	CreateActive(ctx context.Context, plan *models.NutritionPlan) error
	Adjust(ctx context.Context, planID uuid.UUID, targetCalories int, proteinG, fatsG, carbsG float64, explanation string) error
}

// IFoodLogService defines the interface for food log operations
type IFoodLogService interface {
	Create(ctx context.Context, entry *models.FoodLog) error
	ListByDate(ctx context.Context, userID uuid.UUID, day time.Time) ([]models.FoodLog, error)
	Summarize(ctx context.Context, userID uuid.UUID, day time.Time) (*DailySummary, error)
}

// IMealSuggestionService records AI meal recommendations.
type IMealSuggestionService interface {
	Create(ctx context.Context, suggestion *models.MealSuggestion) error
}

// ILLMService defines the request shapes the dialogue layer issues to the
// LLM provider. Implementations must sanitize every numeric field in the
// response before returning it.
type ILLMService interface {
	GeneratePlan(ctx context.Context, req PlanRequest) (*PlanResult, error)
	AdjustPlan(ctx context.Context, current *models.NutritionPlan, request string, profile *models.UserProfile) (*AdjustResult, error)
	AnalyzeFood(ctx context.Context, description string) (*FoodAnalysis, error)
	SuggestMeal(ctx context.Context, request string, plan *models.NutritionPlan, consumed *DailySummary) (*MealIdea, error)
	Chat(ctx context.Context, message string, history []ChatMessage) (string, error)
}

// ITranscriber converts an audio resource into text.
type ITranscriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}
