package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/cidbot/backend/internal/models"
	"github.com/cidbot/backend/internal/nutrition"
)

// llmTimeout bounds a single completion call; the dialogue turn fails
// rather than hanging.
const llmTimeout = 60 * time.Second

// LLMService talks to an OpenAI-compatible chat-completions API. All
// numeric fields in responses are treated as untrusted input and checked
// against the same ranges applied to user input.
type LLMService struct {
	client *openai.Client
	model  string
	log    *logrus.Entry
}

// Ensure LLMService implements ILLMService
var _ ILLMService = (*LLMService)(nil)

// NewLLMService creates a new LLMService instance. baseURL overrides the
// provider endpoint when talking to a compatible API.
func NewLLMService(apiKey, baseURL, model string) *LLMService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    logrus.WithField("component", "llm"),
	}
}

// completeJSON issues a chat completion in json_object mode and returns the
// raw message content.
func (s *LLMService) completeJSON(ctx context.Context, system, user string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}
	return resp.Choices[0].Message.Content, nil
}

// GeneratePlan asks the model for a full plan with explanation. Numbers
// that fail the range checks are replaced with the deterministic
// calculator's values, so a misbehaving model can never corrupt a plan.
func (s *LLMService) GeneratePlan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	prompt := fmt.Sprintf(`You are a professional dietitian. Calculate daily nutrition targets for a client and explain the methodology.

Client data:
- Age: %d years
- Gender: %s
- Height: %.1f cm
- Current weight: %.1f kg
- Target weight: %.1f kg
- Activity level: %s
- Goal: %s
- Calculation method: %s

Do the following:
1. Calculate basal metabolic rate (BMR) using the %s formula
2. Calculate total daily energy expenditure (TDEE) from the activity level
3. Determine the target calories for the goal
4. Calculate the optimal protein/fat/carb distribution
5. Explain in detail why these values were chosen

Return the result STRICTLY as JSON:
{
    "bmr": number,
    "tdee": number,
    "target_calories": number,
    "protein_grams": number,
    "fats_grams": number,
    "carbs_grams": number,
    "explanation": "detailed explanation of the calculations and methodology"
}`,
		req.Age, req.Gender, req.HeightCm, req.CurrentWeight, req.TargetWeight,
		req.ActivityLevel, req.Goal, req.Method, req.Method)

	content, err := s.completeJSON(ctx,
		"You are an experienced dietitian and nutritionist. Always answer in JSON format.",
		prompt, 0.7)
	if err != nil {
		return nil, err
	}

	var result PlanResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse plan response: %w", err)
	}

	sanitizePlanResult(&result, req, s.log)
	return &result, nil
}

// AdjustPlan asks the model to modify an existing plan per a free-text
// request. Out-of-range numbers invalidate the adjustment.
func (s *LLMService) AdjustPlan(ctx context.Context, current *models.NutritionPlan, request string, profile *models.UserProfile) (*AdjustResult, error) {
	if profile == nil {
		profile = &models.UserProfile{}
	}
	prompt := fmt.Sprintf(`You are a professional dietitian. A client wants to adjust their nutrition plan.

Current plan:
- Calories: %d kcal
- Protein: %.1f g
- Fats: %.1f g
- Carbs: %.1f g

Client request: %q

Client data: age %d, gender %s, height %.1f cm, weight %.1f kg, goal %s.

Adjust the plan per the client's wishes, and explain:
1. What changes you are making
2. Why these changes are safe and effective
3. What consequences to expect

Return the result as JSON:
{
    "target_calories": number,
    "protein_grams": number,
    "fats_grams": number,
    "carbs_grams": number,
    "adjustment_explanation": "explanation of the adjustments"
}`,
		current.TargetCalories, current.ProteinG, current.FatsG, current.CarbsG,
		request, profile.Age, profile.Gender, profile.HeightCm, profile.CurrentWeightKg, profile.Goal)

	content, err := s.completeJSON(ctx,
		"You are an experienced dietitian. You help adjust nutrition plans safely and effectively.",
		prompt, 0.7)
	if err != nil {
		return nil, err
	}

	var result AdjustResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse adjustment response: %w", err)
	}

	if !adjustResultInRange(&result) {
		return nil, fmt.Errorf("adjusted plan numbers are out of acceptable ranges")
	}
	return &result, nil
}

// foodAnalysisPayload is the raw wire shape of a food analysis response.
type foodAnalysisPayload struct {
	FoodName    string   `json:"food_name"`
	Calories    *float64 `json:"calories"`
	Protein     *float64 `json:"protein"`
	Fats        *float64 `json:"fats"`
	Carbs       *float64 `json:"carbs"`
	PortionNote string   `json:"portion_note"`
}

// AnalyzeFood estimates the macro content of a free-text food description.
// Implausible numbers are dropped (stored as nil), not clamped.
func (s *LLMService) AnalyzeFood(ctx context.Context, description string) (*FoodAnalysis, error) {
	prompt := fmt.Sprintf(`You are a nutrition expert. Analyze the food description and estimate its nutritional content.

Description: %q

Estimate the approximate calories, protein, fats and carbohydrates.
If the description lacks detail, make reasonable assumptions based on typical portions.

Return the result as JSON:
{
    "food_name": "dish name",
    "calories": number,
    "protein": number,
    "fats": number,
    "carbs": number,
    "portion_note": "note about portion size"
}`, description)

	content, err := s.completeJSON(ctx,
		"You are an expert nutritionist. You analyze food and estimate its nutritional values.",
		prompt, 0.5)
	if err != nil {
		return nil, err
	}

	var payload foodAnalysisPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse food analysis: %w", err)
	}

	analysis := &FoodAnalysis{
		Name:        payload.FoodName,
		Calories:    sanitizeFoodValue(payload.Calories, s.log, "calories"),
		Protein:     sanitizeFoodValue(payload.Protein, s.log, "protein"),
		Fats:        sanitizeFoodValue(payload.Fats, s.log, "fats"),
		Carbs:       sanitizeFoodValue(payload.Carbs, s.log, "carbs"),
		PortionNote: payload.PortionNote,
	}
	if analysis.Name == "" {
		analysis.Name = description
	}
	return analysis, nil
}

// SuggestMeal asks for a meal that fits the remaining daily allowance.
func (s *LLMService) SuggestMeal(ctx context.Context, request string, plan *models.NutritionPlan, consumed *DailySummary) (*MealIdea, error) {
	prompt := fmt.Sprintf(`You are a personal chef and dietitian. Suggest a meal for a client.

Client request: %q

Daily targets:
- Calories: %d kcal
- Protein: %.1f g
- Fats: %.1f g
- Carbs: %.1f g

Already consumed today:
- Calories: %.0f kcal
- Protein: %.1f g
- Fats: %.1f g
- Carbs: %.1f g

Remaining:
- Calories: %.0f kcal
- Protein: %.1f g
- Fats: %.1f g
- Carbs: %.1f g

Suggest a dish or recipe that:
1. Matches the client's request
2. Fits into the remaining allowance
3. Is tasty and easy to cook

Return the result as JSON:
{
    "meal_name": "dish name",
    "description": "short description",
    "ingredients": "ingredient list",
    "cooking_instructions": "short cooking instructions",
    "calories": number,
    "protein": number,
    "fats": number,
    "carbs": number,
    "fits_plan": true/false,
    "recommendation_note": "note/recommendation"
}`,
		request,
		plan.TargetCalories, plan.ProteinG, plan.FatsG, plan.CarbsG,
		consumed.Calories, consumed.Protein, consumed.Fats, consumed.Carbs,
		float64(plan.TargetCalories)-consumed.Calories,
		plan.ProteinG-consumed.Protein,
		plan.FatsG-consumed.Fats,
		plan.CarbsG-consumed.Carbs)

	content, err := s.completeJSON(ctx,
		"You are a personal chef and dietitian. You suggest tasty and healthy meals.",
		prompt, 0.8)
	if err != nil {
		return nil, err
	}

	var idea MealIdea
	if err := json.Unmarshal([]byte(content), &idea); err != nil {
		return nil, fmt.Errorf("failed to parse meal suggestion: %w", err)
	}

	sanitizeMealIdea(&idea, s.log)
	return &idea, nil
}

// Chat handles open-ended conversation with the bounded history window.
func (s *LLMService) Chat(ctx context.Context, message string, history []ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: "You are a personal AI assistant for nutrition and healthy living. You help people reach their nutrition goals.",
		},
	}
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: 0.8,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}
	return resp.Choices[0].Message.Content, nil
}

// sanitizePlanResult replaces out-of-range plan numbers with the
// deterministic calculator's values for the same profile.
func sanitizePlanResult(result *PlanResult, req PlanRequest, log *logrus.Entry) {
	baseline := nutrition.FullPlan(req.CurrentWeight, req.HeightCm, req.Age,
		req.Gender, req.ActivityLevel, req.Goal, req.Method)

	if !nutrition.CaloriesInRange(result.TargetCalories) {
		log.WithField("target_calories", result.TargetCalories).Warn("model returned implausible calories, using calculated value")
		result.TargetCalories = baseline.TargetCalories
	}
	if !nutrition.MacroInRange(result.ProteinG) {
		result.ProteinG = baseline.ProteinG
	}
	if !nutrition.MacroInRange(result.FatsG) {
		result.FatsG = baseline.FatsG
	}
	if !nutrition.MacroInRange(result.CarbsG) {
		result.CarbsG = baseline.CarbsG
	}
	// BMR/TDEE share the calorie plausibility window
	if !nutrition.CaloriesInRange(int(result.BMR)) {
		result.BMR = baseline.BMR
	}
	if !nutrition.CaloriesInRange(int(result.TDEE)) {
		result.TDEE = baseline.TDEE
	}
}

func adjustResultInRange(result *AdjustResult) bool {
	return nutrition.CaloriesInRange(result.TargetCalories) &&
		nutrition.MacroInRange(result.ProteinG) &&
		nutrition.MacroInRange(result.FatsG) &&
		nutrition.MacroInRange(result.CarbsG)
}

// sanitizeFoodValue drops implausible per-meal values. Meals are allowed
// to be small, so only an upper bound and negativity are checked.
func sanitizeFoodValue(v *float64, log *logrus.Entry, field string) *float64 {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > float64(nutrition.MaxCalories) {
		log.WithFields(logrus.Fields{"field": field, "value": *v}).Warn("dropping implausible food analysis value")
		return nil
	}
	return v
}

func sanitizeMealIdea(idea *MealIdea, log *logrus.Entry) {
	clamp := func(v *float64, field string) {
		if *v < 0 {
			log.WithFields(logrus.Fields{"field": field, "value": *v}).Warn("clamping negative meal value")
			*v = 0
		}
	}
	clamp(&idea.Calories, "calories")
	clamp(&idea.Protein, "protein")
	clamp(&idea.Fats, "fats")
	clamp(&idea.Carbs, "carbs")
}
