package bot

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cidbot/backend/internal/models"
	"github.com/cidbot/backend/internal/nutrition"
	"github.com/cidbot/backend/internal/service"
)

// handlePlanView shows the active plan with its methodology.
func (r *Router) handlePlanView(ctx context.Context, session *Session) []Reply {
	session.ResetFlow()

	plan, err := r.plans.GetActive(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePlan) {
			return []Reply{replyWithKeyboard(msgNoPlanYet, FillProfile())}
		}
		r.log.WithError(err).Error("failed to load active plan")
		return []Reply{reply(msgGenericError)}
	}

	return []Reply{replyWithKeyboard(formatPlan(plan), PlanActions())}
}

func (r *Router) handleMealStart(ctx context.Context, session *Session) []Reply {
	session.ResetFlow()

	if _, err := r.plans.GetActive(ctx, session.UserID); err != nil {
		if errors.Is(err, service.ErrNoActivePlan) {
			return []Reply{replyWithKeyboard(msgNoPlanYet, FillProfile())}
		}
		r.log.WithError(err).Error("failed to load active plan")
		return []Reply{reply(msgGenericError)}
	}

	session.State = StateMealPlanRequest
	return []Reply{reply(msgMealIntro)}
}

// handleMealRequest asks the LLM for a meal that fits the remaining daily
// allowance and records the suggestion for later reference.
func (r *Router) handleMealRequest(ctx context.Context, session *Session, text string) []Reply {
	plan, err := r.plans.GetActive(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePlan) {
			session.ResetFlow()
			return []Reply{replyWithKeyboard(msgNoPlanYet, FillProfile())}
		}
		r.log.WithError(err).Error("failed to load active plan")
		return []Reply{reply(msgGenericError)}
	}

	summary, err := r.foodLogs.Summarize(ctx, session.UserID, r.now())
	if err != nil {
		r.log.WithError(err).Error("failed to summarize day")
		summary = &service.DailySummary{}
	}

	idea, err := r.llm.SuggestMeal(ctx, text, plan, summary)
	if err != nil {
		r.log.WithError(err).Warn("meal suggestion failed")
		return []Reply{reply(msgChatFailed)}
	}

	suggestion := &models.MealSuggestion{
		ID:           uuid.New(),
		UserID:       session.UserID,
		Name:         idea.Name,
		Description:  idea.Description,
		Ingredients:  idea.Ingredients,
		Instructions: idea.Instructions,
		Calories:     idea.Calories,
		Protein:      idea.Protein,
		Fats:         idea.Fats,
		Carbs:        idea.Carbs,
		FitsPlan:     idea.FitsPlan,
	}
	if err := r.meals.Create(ctx, suggestion); err != nil {
		// The recommendation is still useful even if the record fails.
		r.log.WithError(err).Error("failed to save meal suggestion")
	}

	return []Reply{
		reply(msgPickingMeal),
		replyWithKeyboard(formatMealIdea(idea), StatsActions()),
	}
}

// handleAdjustStart enters the free-text adjustment flow, available only
// when there is a plan to adjust.
func (r *Router) handleAdjustStart(ctx context.Context, session *Session) []Reply {
	session.ResetFlow()

	if _, err := r.plans.GetActive(ctx, session.UserID); err != nil {
		if errors.Is(err, service.ErrNoActivePlan) {
			return []Reply{replyWithKeyboard(msgNoPlanYet, FillProfile())}
		}
		r.log.WithError(err).Error("failed to load active plan")
		return []Reply{reply(msgGenericError)}
	}

	session.State = StateAdjustNutrition
	return []Reply{reply(msgAdjustIntro)}
}

// handleAdjustRequest applies a free-text change to the active plan. The
// LLM proposes the new numbers; out-of-range proposals are rejected by the
// LLM layer and surface here as an error, so the stored plan only ever
// holds validated values.
func (r *Router) handleAdjustRequest(ctx context.Context, session *Session, text string) []Reply {
	plan, err := r.plans.GetActive(ctx, session.UserID)
	if err != nil {
		session.ResetFlow()
		if errors.Is(err, service.ErrNoActivePlan) {
			return []Reply{replyWithKeyboard(msgNoPlanYet, FillProfile())}
		}
		r.log.WithError(err).Error("failed to load active plan")
		return []Reply{reply(msgGenericError)}
	}

	var profile *models.UserProfile
	if p, err := r.profiles.Get(ctx, session.UserID); err == nil {
		profile = p
	}

	result, err := r.llm.AdjustPlan(ctx, plan, text, profile)
	if err != nil {
		r.log.WithError(err).Warn("plan adjustment failed")
		return []Reply{reply(msgAdjustFailed)}
	}

	// The adjustment narrative is appended so the plan's history of
	// reasoning stays readable.
	explanation := plan.MethodologyExplanation + "\n\nADJUSTMENT:\n" + result.Explanation
	if err := r.plans.Adjust(ctx, plan.ID, result.TargetCalories,
		result.ProteinG, result.FatsG, result.CarbsG, explanation); err != nil {
		r.log.WithError(err).Error("failed to save adjusted plan")
		return []Reply{reply(msgGenericError)}
	}

	session.ResetFlow()
	return []Reply{
		reply(msgAdjusting),
		replyWithKeyboard(formatPlanAdjusted(result), PlanActions()),
	}
}

// handleRecalculate rebuilds the plan from the stored profile, superseding
// the active one. Useful after a weight update or to undo adjustments.
func (r *Router) handleRecalculate(ctx context.Context, session *Session) []Reply {
	session.ResetFlow()

	profile, err := r.profiles.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return []Reply{replyWithKeyboard(msgNoProfileYet, FillProfile())}
		}
		r.log.WithError(err).Error("failed to load profile")
		return []Reply{reply(msgGenericError)}
	}

	calc := nutrition.FullPlan(
		profile.CurrentWeightKg, profile.HeightCm, profile.Age,
		profile.Gender, profile.ActivityLevel, profile.Goal, profile.CalculationMethod,
	)
	plan := &models.NutritionPlan{
		UserID:         session.UserID,
		BMR:            calc.BMR,
		TDEE:           calc.TDEE,
		TargetCalories: calc.TargetCalories,
		ProteinG:       calc.ProteinG,
		FatsG:          calc.FatsG,
		CarbsG:         calc.CarbsG,
		MethodologyExplanation: nutrition.MethodologyExplanation(
			profile.CalculationMethod, profile.Goal, profile.ActivityLevel,
			calc.BMR, calc.TDEE, calc.TargetCalories,
		),
	}
	if err := r.plans.CreateActive(ctx, plan); err != nil {
		r.log.WithError(err).Error("failed to save recalculated plan")
		return []Reply{reply(msgGenericError)}
	}

	return []Reply{replyWithKeyboard(formatPlan(plan), PlanActions())}
}
