package bot

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cidbot/backend/internal/models"
	"github.com/cidbot/backend/internal/nutrition"
	"github.com/cidbot/backend/internal/service"
)

// handleProfileView shows the stored profile, or starts creation when there
// is none yet.
func (r *Router) handleProfileView(ctx context.Context, session *Session) []Reply {
	profile, err := r.profiles.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return r.beginProfileFlow(session, false)
		}
		r.log.WithError(err).Error("failed to load profile")
		return []Reply{reply(msgGenericError)}
	}

	session.ResetFlow()
	return []Reply{replyWithKeyboard(formatProfile(profile), ProfileActions())}
}

func (r *Router) handleProfileEdit(session *Session) []Reply {
	return r.beginProfileFlow(session, true)
}

func (r *Router) beginProfileFlow(session *Session, editing bool) []Reply {
	session.ResetFlow()
	session.State = StateProfileAge
	session.Draft = &ProfileDraft{Editing: editing}

	intro := msgProfileCreateIntro
	if editing {
		intro = msgProfileEditIntro
	}
	return []Reply{reply(intro)}
}

// handleUpdateWeightStart reuses the current-weight step for a standalone
// quick update. The flag tells the input handler to write the single field
// and stop instead of continuing the profile walk.
func (r *Router) handleUpdateWeightStart(session *Session) []Reply {
	session.ResetFlow()
	session.State = StateProfileCurrentWeight
	session.QuickWeightUpdate = true
	return []Reply{reply(msgUpdateWeightIntro)}
}

// Text inputs for the profile walk. Invalid input re-prompts and never
// advances the state.

func (r *Router) handleAgeInput(session *Session, text string) []Reply {
	if session.Draft == nil {
		session.ResetFlow()
		return []Reply{replyWithKeyboard(msgRestartFlow, MainMenu())}
	}

	ok, age, msg := nutrition.ValidateAge(text)
	if !ok {
		return []Reply{reply(formatValidationError(msg))}
	}

	session.Draft.Age = age
	session.State = StateProfileGender
	return []Reply{replyWithKeyboard(msgAskGender, GenderSelection())}
}

func (r *Router) handleHeightInput(session *Session, text string) []Reply {
	if session.Draft == nil {
		session.ResetFlow()
		return []Reply{replyWithKeyboard(msgRestartFlow, MainMenu())}
	}

	ok, height, msg := nutrition.ValidateHeight(text)
	if !ok {
		return []Reply{reply(formatValidationError(msg))}
	}

	session.Draft.HeightCm = height
	session.State = StateProfileCurrentWeight
	return []Reply{reply(msgAskCurrentWeight)}
}

func (r *Router) handleCurrentWeightInput(ctx context.Context, session *Session, text string) []Reply {
	ok, weight, msg := nutrition.ValidateWeight(text)
	if !ok {
		return []Reply{reply(formatValidationError(msg))}
	}

	if session.QuickWeightUpdate {
		return r.finishQuickWeightUpdate(ctx, session, weight)
	}

	if session.Draft == nil {
		session.ResetFlow()
		return []Reply{replyWithKeyboard(msgRestartFlow, MainMenu())}
	}

	session.Draft.CurrentWeightKg = weight
	session.State = StateProfileTargetWeight
	return []Reply{reply(msgAskTargetWeight)}
}

func (r *Router) finishQuickWeightUpdate(ctx context.Context, session *Session, weight float64) []Reply {
	err := r.profiles.UpdateCurrentWeight(ctx, session.UserID, weight)
	session.ResetFlow()
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return []Reply{replyWithKeyboard(msgNoProfileYet, FillProfile())}
		}
		r.log.WithError(err).Error("failed to update weight")
		return []Reply{reply(msgGenericError)}
	}
	return []Reply{replyWithKeyboard(formatWeightUpdated(weight), MainMenu())}
}

func (r *Router) handleTargetWeightInput(session *Session, text string) []Reply {
	if session.Draft == nil {
		session.ResetFlow()
		return []Reply{replyWithKeyboard(msgRestartFlow, MainMenu())}
	}

	ok, weight, msg := nutrition.ValidateWeight(text)
	if !ok {
		return []Reply{reply(formatValidationError(msg))}
	}

	session.Draft.TargetWeightKg = weight
	session.State = StateProfileActivity
	return []Reply{replyWithKeyboard(msgAskActivity, ActivitySelection())}
}

// handleButtonStepText re-prompts when the user types during a step that
// only accepts button presses.
func (r *Router) handleButtonStepText(session *Session) []Reply {
	switch session.State {
	case StateProfileGender:
		return []Reply{replyWithKeyboard(msgAskGender, GenderSelection())}
	case StateProfileActivity:
		return []Reply{replyWithKeyboard(msgAskActivity, ActivitySelection())}
	case StateProfileGoal:
		return []Reply{replyWithKeyboard(msgAskGoal, GoalSelection())}
	default:
		return []Reply{replyWithKeyboard(msgAskMethod, MethodSelection())}
	}
}

// Button selections for the profile walk. Presses arriving in the wrong
// state (stale keyboards after a restart or reset) restart the flow cleanly.

func (r *Router) handleGenderSelected(session *Session, gender string) []Reply {
	if session.State != StateProfileGender || session.Draft == nil {
		session.ResetFlow()
		return []Reply{replyWithKeyboard(msgRestartFlow, MainMenu())}
	}

	session.Draft.Gender = gender
	session.State = StateProfileHeight
	return []Reply{reply(msgAskHeight)}
}

func (r *Router) handleActivitySelected(session *Session, level string) []Reply {
	if session.State != StateProfileActivity || session.Draft == nil {
		session.ResetFlow()
		return []Reply{replyWithKeyboard(msgRestartFlow, MainMenu())}
	}

	session.Draft.ActivityLevel = level
	session.State = StateProfileGoal
	return []Reply{replyWithKeyboard(msgAskGoal, GoalSelection())}
}

func (r *Router) handleGoalSelected(session *Session, goal string) []Reply {
	if session.State != StateProfileGoal || session.Draft == nil {
		session.ResetFlow()
		return []Reply{replyWithKeyboard(msgRestartFlow, MainMenu())}
	}

	session.Draft.Goal = goal
	session.State = StateProfileMethod
	return []Reply{replyWithKeyboard(msgAskMethod, MethodSelection())}
}

// handleMethodSelected is the final profile step: persist the profile,
// compute the plan and activate it. Failure keeps the session at the method
// step with the draft intact so the user retries by pressing a method
// button again; the profile upsert is idempotent, so a retry after a
// partial failure does not duplicate anything.
func (r *Router) handleMethodSelected(ctx context.Context, session *Session, method string) []Reply {
	if session.State != StateProfileMethod || session.Draft == nil {
		session.ResetFlow()
		return []Reply{replyWithKeyboard(msgRestartFlow, MainMenu())}
	}

	draft := session.Draft
	draft.Method = method

	profile := &models.UserProfile{
		UserID:            session.UserID,
		Age:               draft.Age,
		Gender:            draft.Gender,
		HeightCm:          draft.HeightCm,
		CurrentWeightKg:   draft.CurrentWeightKg,
		TargetWeightKg:    draft.TargetWeightKg,
		ActivityLevel:     draft.ActivityLevel,
		Goal:              draft.Goal,
		CalculationMethod: draft.Method,
	}
	if err := r.profiles.Upsert(ctx, profile); err != nil {
		r.log.WithError(err).Error("failed to save profile")
		return []Reply{replyWithKeyboard(msgProfileSaveFailed, MethodSelection())}
	}

	plan := r.buildPlan(ctx, session.UserID, draft)
	if err := r.plans.CreateActive(ctx, plan); err != nil {
		r.log.WithError(err).Error("failed to save nutrition plan")
		return []Reply{replyWithKeyboard(msgPlanSaveFailed, MethodSelection())}
	}

	session.ResetFlow()
	return []Reply{reply(msgCreatingPlan), replyWithKeyboard(formatPlanCreated(plan, draft.Editing), MainMenu())}
}

// buildPlan derives a nutrition plan from a profile draft. The numbers are
// always the deterministic calculation; the LLM only contributes an
// explanation, and when it is unavailable the deterministic methodology
// text is used instead.
func (r *Router) buildPlan(ctx context.Context, userID uuid.UUID, draft *ProfileDraft) *models.NutritionPlan {
	calc := nutrition.FullPlan(
		draft.CurrentWeightKg, draft.HeightCm, draft.Age,
		draft.Gender, draft.ActivityLevel, draft.Goal, draft.Method,
	)

	explanation := nutrition.MethodologyExplanation(
		draft.Method, draft.Goal, draft.ActivityLevel,
		calc.BMR, calc.TDEE, calc.TargetCalories,
	)

	result, err := r.llm.GeneratePlan(ctx, service.PlanRequest{
		Age:           draft.Age,
		Gender:        draft.Gender,
		HeightCm:      draft.HeightCm,
		CurrentWeight: draft.CurrentWeightKg,
		TargetWeight:  draft.TargetWeightKg,
		ActivityLevel: draft.ActivityLevel,
		Goal:          draft.Goal,
		Method:        draft.Method,
	})
	if err != nil {
		r.log.WithError(err).Warn("plan generation degraded to deterministic baseline")
	} else if result.Explanation != "" {
		explanation = result.Explanation
	}

	return &models.NutritionPlan{
		UserID:                 userID,
		BMR:                    calc.BMR,
		TDEE:                   calc.TDEE,
		TargetCalories:         calc.TargetCalories,
		ProteinG:               calc.ProteinG,
		FatsG:                  calc.FatsG,
		CarbsG:                 calc.CarbsG,
		MethodologyExplanation: explanation,
	}
}
